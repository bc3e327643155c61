package uitemplates

import "html/template"

type WatchPlayParams struct {
	UserError string
	Pick      *WatchPlayEntry
	Items     []*WatchPlayEntry
}

type WatchPlayEntry struct {
	ID     string
	Title  string
	Kind   string
	Status string
	Rating int64
}

var watchPlayText = `
{{define "title"}}Watch &amp; Play{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Watch &amp; Play</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Watch &amp; Play</h1>

<form method="post" action="/watchplay/random" class="mb-3">
  <button type="submit" class="btn btn-success">Pick something for tonight</button>
</form>
{{if .Pick}}
<div class="alert alert-info" role="alert">Tonight: <strong>{{.Pick.Title}}</strong> ({{.Pick.Kind}})</div>
{{end}}

<table class="table">
  <thead>
    <tr>
	  <th>Title</th>
	  <th>Kind</th>
	  <th>Status</th>
	  <th>Rating</th>
	  <th></th>
	</tr>
  </thead>
  <tbody>
    {{range .Items}}
    <tr>
	  <td>{{.Title}}</td>
	  <td>{{.Kind}}</td>
	  <td>{{.Status}}</td>
	  <td>{{if eq .Status "done"}}{{.Rating}}/10{{end}}</td>
	  <td>
	    <form method="post" action="/watchplay/update">
		  <input type="hidden" name="id" value="{{.ID}}">
		  <select name="status">
		    <option value="backlog" {{if eq .Status "backlog"}}selected{{end}}>backlog</option>
		    <option value="inprogress" {{if eq .Status "inprogress"}}selected{{end}}>in progress</option>
		    <option value="done" {{if eq .Status "done"}}selected{{end}}>done</option>
		  </select>
		  <input type="number" name="rating" min="0" max="10" value="{{.Rating}}">
		  <button type="submit" class="btn btn-sm btn-secondary">Save</button>
		</form>
	    <form method="post" action="/watchplay/delete">
		  <input type="hidden" name="id" value="{{.ID}}">
		  <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
		</form>
	  </td>
	</tr>
	{{end}}
  </tbody>
</table>

<h2>Add to the List</h2>
<form method="post" action="/watchplay">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" id="title" name="title" required>
  </div>
  <div class="mb-3">
    <label for="kind" class="form-label">Kind</label>
    <select class="form-select" id="kind" name="kind">
	  <option value="movie">movie</option>
	  <option value="series">series</option>
	  <option value="game">game</option>
	</select>
  </div>
  <button type="submit" class="btn btn-primary">Add</button>
</form>
{{end}}
`

var WatchPlayTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(watchPlayText))
