package uitemplates

import "html/template"

type TimelineParams struct {
	UserError string
	Items     []*TimelineEntry
}

type TimelineEntry struct {
	ID       string
	Title    string
	Body     string
	Date     string
	Mood     string
	PhotoURL string
}

var timelineText = `
{{define "title"}}Our Timeline{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Our Timeline</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Our Timeline</h1>
{{range .Items}}
<div class="card mb-3">
  <div class="card-body">
    <h5 class="card-title">{{.Title}} <small class="text-muted">{{.Date}} {{.Mood}}</small></h5>
    {{if .PhotoURL}}<img src="{{.PhotoURL}}" class="img-fluid mb-2" alt="">{{end}}
    <p class="card-text">{{.Body}}</p>
    <form method="post" action="/timeline/delete">
	  <input type="hidden" name="id" value="{{.ID}}">
	  <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
	</form>
  </div>
</div>
{{else}}
<p>No memories yet.  Write the first one.</p>
{{end}}

<h2>New Memory</h2>
<form method="post" action="/timeline" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" id="title" name="title" required>
  </div>
  <div class="mb-3">
    <label for="body" class="form-label">What happened?</label>
    <textarea class="form-control" id="body" name="body" required></textarea>
  </div>
  <div class="mb-3">
    <label for="date" class="form-label">Date</label>
    <input type="date" class="form-control" id="date" name="date">
  </div>
  <div class="mb-3">
    <label for="mood" class="form-label">Mood</label>
    <input type="text" class="form-control" id="mood" name="mood">
  </div>
  <div class="mb-3">
    <label for="photo" class="form-label">Photo (optional)</label>
    <input type="file" class="form-control" id="photo" name="photo" accept="image/*">
  </div>
  <button type="submit" class="btn btn-primary">Add</button>
</form>
{{end}}
`

var TimelineTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(timelineText))
