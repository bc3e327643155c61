package uitemplates

import "html/template"

type WishesParams struct {
	UserError string
	Wishes    []*WishEntry
}

type WishEntry struct {
	ID         string
	Text       string
	Author     string
	UnlockDate string
	Revealed   bool
	CanReveal  bool
}

var wishesText = `
{{define "title"}}Wish Jar{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Wish Jar</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Wish Jar</h1>
<ul class="list-group mb-3">
  {{range .Wishes}}
  <li class="list-group-item">
    {{if .Revealed}}
	  "{{.Text}}" &mdash; {{.Author}}
	{{else if .CanReveal}}
	  <em>Sealed wish from {{.Author}}, ready to open.</em>
	  <form method="post" action="/wishes/reveal" class="d-inline">
	    <input type="hidden" name="id" value="{{.ID}}">
		<button type="submit" class="btn btn-sm btn-primary">Open</button>
	  </form>
	{{else}}
	  <em>Sealed wish from {{.Author}}; unlocks {{.UnlockDate}}.</em>
	{{end}}
  </li>
  {{else}}
  <li class="list-group-item">The jar is empty.</li>
  {{end}}
</ul>

<h2>Drop a Wish</h2>
<form method="post" action="/wishes">
  <div class="mb-3">
    <label for="text" class="form-label">Your wish</label>
    <textarea class="form-control" id="text" name="text" required></textarea>
  </div>
  <div class="mb-3">
    <label for="unlock-date" class="form-label">Unlock date</label>
    <input type="date" class="form-control" id="unlock-date" name="unlock-date" required>
  </div>
  <button type="submit" class="btn btn-primary">Seal It</button>
</form>
{{end}}
`

var WishesTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(wishesText))
