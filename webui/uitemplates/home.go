package uitemplates

import "html/template"

type HomeParams struct {
	LoggedIn bool
	CycleDay int
	Phase    string
}

var homeText = `
{{define "title"}}Home{{end}}

{{define "content"}}
{{if .LoggedIn}}
<ul>
  <li><a href="/timeline">Our Timeline</a></li>
  <li><a href="/dates">Date Planner</a></li>
  <li><a href="/wishes">Wish Jar</a></li>
  <li><a href="/watchplay">Watch &amp; Play</a></li>
  <li><a href="/photos">Photo Album</a></li>
  <li><a href="/ramadan">Ramadan Tracker</a></li>
  <li><a href="/cycle">Cycle Calendar</a></li>
  <li><a href="/notifications">Notifications</a></li>
</ul>
<p>Today is cycle day {{.CycleDay}} ({{.Phase}}).</p>
<a href="/log-out">Log Out</a>
{{else}}
<p>A little home for the two of us.</p>
<a href="/log-in">Log In</a>
{{end}}
{{end}}
`

var HomeTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(homeText))
