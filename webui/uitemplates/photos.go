package uitemplates

import "html/template"

type PhotosParams struct {
	UserError string
	Photos    []*PhotoEntry
}

type PhotoEntry struct {
	ID           string
	Caption      string
	RetrievalURL string
	UploadedBy   string
}

var photosText = `
{{define "title"}}Photo Album{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Photo Album</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Photo Album</h1>
<div class="row">
  {{range .Photos}}
  <div class="col-md-4 mb-3">
    <div class="card">
	  <img src="{{.RetrievalURL}}" class="card-img-top" alt="{{.Caption}}">
	  <div class="card-body">
	    <p class="card-text">{{.Caption}}</p>
	    <form method="post" action="/photos/delete">
		  <input type="hidden" name="id" value="{{.ID}}">
		  <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
		</form>
	  </div>
	</div>
  </div>
  {{else}}
  <p>No photos yet.</p>
  {{end}}
</div>

<h2>Upload</h2>
<form method="post" action="/photos" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="photo" class="form-label">Photo</label>
    <input type="file" class="form-control" id="photo" name="photo" accept="image/*" required>
  </div>
  <div class="mb-3">
    <label for="caption" class="form-label">Caption</label>
    <input type="text" class="form-control" id="caption" name="caption">
  </div>
  <button type="submit" class="btn btn-primary">Upload</button>
</form>
{{end}}
`

var PhotosTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(photosText))
