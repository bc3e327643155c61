package uitemplates

import "html/template"

type LogInParams struct {
	UserError string
}

var logInText = `
{{define "title"}}Log In{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Log In</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}
<form method="post">
  <div class="mb-3">
    <label for="email" class="form-label">Email</label>
    <input type="email" class="form-control" id="email" name="email">
  </div>
  <div class="mb-3">
    <label for="password" class="form-label">Password</label>
    <input type="password" class="form-control" id="password" name="password">
  </div>
  <button type="submit" class="btn btn-primary">Log In</button>
</form>
{{end}}
`

var LogInTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(logInText))
