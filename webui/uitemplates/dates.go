package uitemplates

import "html/template"

type ListDatesParams struct {
	UserError string
	Dates     []*ListDatesDate
}

type ListDatesDate struct {
	ID          string
	Title       string
	Description string
	Location    string
	Category    string
	Status      string
	PlannedFor  string
}

var listDatesText = `
{{define "title"}}Date Planner{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Date Planner</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Date Planner</h1>
<table class="table">
  <thead>
    <tr>
	  <th>Date</th>
	  <th>Where</th>
	  <th>Category</th>
	  <th>Status</th>
	  <th>Planned For</th>
	  <th></th>
	</tr>
  </thead>
  <tbody>
    {{range .Dates}}
    <tr>
	  <td>{{.Title}}<br><small>{{.Description}}</small></td>
	  <td>{{.Location}}</td>
	  <td>{{.Category}}</td>
	  <td>{{.Status}}</td>
	  <td>{{.PlannedFor}}</td>
	  <td>
	    <form method="post" action="/dates/update">
		  <input type="hidden" name="id" value="{{.ID}}">
		  <select name="status">
		    <option value="idea" {{if eq .Status "idea"}}selected{{end}}>idea</option>
		    <option value="planned" {{if eq .Status "planned"}}selected{{end}}>planned</option>
		    <option value="done" {{if eq .Status "done"}}selected{{end}}>done</option>
		  </select>
		  <input type="date" name="planned-for" value="{{.PlannedFor}}">
		  <button type="submit" class="btn btn-sm btn-secondary">Save</button>
		</form>
	    <form method="post" action="/dates/delete">
		  <input type="hidden" name="id" value="{{.ID}}">
		  <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
		</form>
	  </td>
	</tr>
	{{end}}
  </tbody>
</table>

<h2>New Idea</h2>
<form method="post" action="/dates">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" id="title" name="title" required>
  </div>
  <div class="mb-3">
    <label for="description" class="form-label">Description</label>
    <input type="text" class="form-control" id="description" name="description">
  </div>
  <div class="mb-3">
    <label for="location" class="form-label">Location</label>
    <input type="text" class="form-control" id="location" name="location">
  </div>
  <div class="mb-3">
    <label for="category" class="form-label">Category</label>
    <input type="text" class="form-control" id="category" name="category">
  </div>
  <button type="submit" class="btn btn-primary">Add</button>
</form>
{{end}}
`

var ListDatesTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(listDatesText))
