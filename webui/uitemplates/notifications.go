package uitemplates

import "html/template"

type NotificationsParams struct {
	UserError   string
	UnreadCount int
	Items       []*NotificationEntry
}

type NotificationEntry struct {
	ID        string
	Title     string
	Body      string
	Kind      string
	Read      bool
	CreatedAt string
}

var notificationsText = `
{{define "title"}}Notifications{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Notifications</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Notifications</h1>
<p>{{.UnreadCount}} unread.</p>

{{if .UnreadCount}}
<form method="post" action="/notifications/read-all" class="mb-3">
  <button type="submit" class="btn btn-sm btn-secondary">Mark all read</button>
</form>
{{end}}

<ul class="list-group mb-3">
  {{range .Items}}
  <li class="list-group-item {{if not .Read}}list-group-item-warning{{end}}">
    <strong>{{.Title}}</strong> <small class="text-muted">{{.Kind}} &middot; {{.CreatedAt}}</small>
	<p class="mb-1">{{.Body}}</p>
	{{if not .Read}}
	<form method="post" action="/notifications/read">
	  <input type="hidden" name="id" value="{{.ID}}">
	  <button type="submit" class="btn btn-sm btn-outline-secondary">Mark read</button>
	</form>
	{{end}}
  </li>
  {{else}}
  <li class="list-group-item">Nothing yet.</li>
  {{end}}
</ul>

<h2>Send a Note</h2>
<form method="post" action="/notifications/send">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" id="title" name="title" required>
  </div>
  <div class="mb-3">
    <label for="body" class="form-label">Message</label>
    <textarea class="form-control" id="body" name="body"></textarea>
  </div>
  <button type="submit" class="btn btn-primary">Send to my favorite person</button>
</form>

<h2>Push</h2>
<form method="post" action="/notifications/device">
  <div class="mb-3">
    <label for="token" class="form-label">Device token</label>
    <input type="text" class="form-control" id="token" name="token" required>
  </div>
  <button type="submit" class="btn btn-secondary">Register this device</button>
</form>
{{end}}
`

var NotificationsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(notificationsText))
