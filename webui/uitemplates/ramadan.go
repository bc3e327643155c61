package uitemplates

import "html/template"

type RamadanParams struct {
	UserError string

	Today       *RamadanDayView
	DayNumber   int
	WindowDays  int
	GoalPages   int64
	DebtPages   int64
	PeriodOwner bool

	Days    []*RamadanDayView
	History []*PeriodHistoryView

	TotalMissedDays int64
}

type RamadanDayView struct {
	Date      string
	DayNumber int

	Fajr    bool
	Dhuhr   bool
	Asr     bool
	Maghrib bool
	Isha    bool

	FajrPages    int64
	DhuhrPages   int64
	AsrPages     int64
	MaghribPages int64
	IshaPages    int64

	Fasting            bool
	NightPrayer        bool
	MorningRemembrance bool
	EveningRemembrance bool

	OnPeriod         bool
	PeriodQuranPages int64

	PagesRead int64
}

type PeriodHistoryView struct {
	StartDate  string
	EndDate    string
	MissedDays int64
	Open       bool
}

var ramadanText = `
{{define "title"}}Ramadan Tracker{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Ramadan Tracker</li>
{{- end}}

{{define "content"}}
{{if .UserError}}
<div class="alert alert-danger" role="alert">{{.UserError}}</div>
{{end}}

<h1>Ramadan Tracker</h1>
<p>Day {{.DayNumber}} of {{.WindowDays}}.  Daily goal: {{.GoalPages}} pages.
{{if .DebtPages}}Catch-up owed: <strong>{{.DebtPages}} pages</strong>.{{else}}No catch-up owed.{{end}}</p>

{{with .Today}}
<h2>Today ({{.Date}})</h2>
<form method="post" action="/ramadan/day">
  <input type="hidden" name="date" value="{{.Date}}">
  {{if .OnPeriod}}
  <p><em>Resting today.  Prayer and fasting entries are paused.</em></p>
  <div class="mb-3">
    <label for="period-pages" class="form-label">Quran pages read</label>
    <input type="number" id="period-pages" name="period-quran-pages" min="0" value="{{.PeriodQuranPages}}">
  </div>
  {{else}}
  <table class="table">
    <thead><tr><th>Prayer</th><th>Prayed</th><th>Pages after</th></tr></thead>
    <tbody>
	  <tr><td>Fajr</td><td><input type="checkbox" name="fajr" {{if .Fajr}}checked{{end}}></td><td><input type="number" name="fajr-pages" min="0" value="{{.FajrPages}}"></td></tr>
	  <tr><td>Dhuhr</td><td><input type="checkbox" name="dhuhr" {{if .Dhuhr}}checked{{end}}></td><td><input type="number" name="dhuhr-pages" min="0" value="{{.DhuhrPages}}"></td></tr>
	  <tr><td>Asr</td><td><input type="checkbox" name="asr" {{if .Asr}}checked{{end}}></td><td><input type="number" name="asr-pages" min="0" value="{{.AsrPages}}"></td></tr>
	  <tr><td>Maghrib</td><td><input type="checkbox" name="maghrib" {{if .Maghrib}}checked{{end}}></td><td><input type="number" name="maghrib-pages" min="0" value="{{.MaghribPages}}"></td></tr>
	  <tr><td>Isha</td><td><input type="checkbox" name="isha" {{if .Isha}}checked{{end}}></td><td><input type="number" name="isha-pages" min="0" value="{{.IshaPages}}"></td></tr>
	</tbody>
  </table>
  <div class="form-check"><input class="form-check-input" type="checkbox" id="fasting" name="fasting" {{if .Fasting}}checked{{end}}><label class="form-check-label" for="fasting">Fasting</label></div>
  <div class="form-check"><input class="form-check-input" type="checkbox" id="night-prayer" name="night-prayer" {{if .NightPrayer}}checked{{end}}><label class="form-check-label" for="night-prayer">Night prayer</label></div>
  {{end}}
  <div class="form-check"><input class="form-check-input" type="checkbox" id="morning-remembrance" name="morning-remembrance" {{if .MorningRemembrance}}checked{{end}}><label class="form-check-label" for="morning-remembrance">Morning remembrance</label></div>
  <div class="form-check"><input class="form-check-input" type="checkbox" id="evening-remembrance" name="evening-remembrance" {{if .EveningRemembrance}}checked{{end}}><label class="form-check-label" for="evening-remembrance">Evening remembrance</label></div>
  <button type="submit" class="btn btn-primary mt-2">Save Today</button>
</form>

{{if $.PeriodOwner}}
<form method="post" action="/ramadan/period" class="mt-2">
  <input type="hidden" name="date" value="{{.Date}}">
  {{if .OnPeriod}}
  <input type="hidden" name="on" value="false">
  <button type="submit" class="btn btn-outline-secondary">Period ended</button>
  {{else}}
  <input type="hidden" name="on" value="true">
  <button type="submit" class="btn btn-outline-secondary">Period started</button>
  {{end}}
</form>
{{end}}
{{end}}

<h2>The Month So Far</h2>
<table class="table">
  <thead><tr><th>Day</th><th>Date</th><th>Pages</th><th></th></tr></thead>
  <tbody>
    {{range .Days}}
    <tr>
	  <td>{{.DayNumber}}</td>
	  <td>{{.Date}}</td>
	  <td>{{.PagesRead}}</td>
	  <td>{{if .OnPeriod}}resting{{else if .Fasting}}fasting{{end}}</td>
	</tr>
	{{end}}
  </tbody>
</table>

{{if $.PeriodOwner}}
<h2>Period Ledger</h2>
<p>Total fasting days to make up: {{.TotalMissedDays}}</p>
<table class="table">
  <thead><tr><th>From</th><th>To</th><th>Days</th></tr></thead>
  <tbody>
    {{range .History}}
    <tr>
	  <td>{{.StartDate}}</td>
	  <td>{{if .Open}}ongoing{{else}}{{.EndDate}}{{end}}</td>
	  <td>{{if .Open}}&mdash;{{else}}{{.MissedDays}}{{end}}</td>
	</tr>
	{{end}}
  </tbody>
</table>
{{end}}
{{end}}
`

var RamadanTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(ramadanText))
