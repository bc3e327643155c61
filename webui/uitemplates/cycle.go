package uitemplates

import "html/template"

type CycleParams struct {
	CurrentDay   int
	CurrentPhase string

	// InspectDay is the day being looked at, which may differ from
	// CurrentDay; inspecting never moves the "today" marker.
	InspectDay   int
	InspectPhase string

	Days []*CycleDayView
}

type CycleDayView struct {
	Day     int
	Phase   string
	Today   bool
	Inspect string // link to inspect this day
}

var cycleText = `
{{define "title"}}Cycle Calendar{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Cycle Calendar</li>
{{- end}}

{{define "content"}}
<h1>Cycle Calendar</h1>
<p>Today is day <strong>{{.CurrentDay}}</strong> &mdash; {{.CurrentPhase}} phase.</p>
{{if ne .InspectDay .CurrentDay}}
<p>Looking at day {{.InspectDay}}: {{.InspectPhase}} phase.</p>
{{end}}

<div class="d-flex flex-wrap">
  {{range .Days}}
  <a href="{{.Inspect}}" class="btn m-1 {{if .Today}}btn-primary{{else}}btn-outline-secondary{{end}}">
    {{.Day}}<br><small>{{.Phase}}</small>
  </a>
  {{end}}
</div>
{{end}}
`

var CycleTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(cycleText))
