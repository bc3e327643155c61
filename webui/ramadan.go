package webui

import (
	"net/http"
	"strconv"
	"time"

	"ourstory/dbtypes"
	"ourstory/ramadan"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// ramadanHandler renders the daily checklist, the month so far, and the
// period ledger.  Viewing today lazily creates its document and
// recomputes the reading debt.
func (u *WebUI) ramadanHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ramadan" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	window := u.tracker.Window()
	now := time.Now()

	params := &uitemplates.RamadanParams{
		WindowDays:  window.Days,
		GoalPages:   u.tracker.Goal(),
		PeriodOwner: member == u.tracker.PeriodMember(),
	}

	if window.Contains(now) {
		params.DayNumber = window.DayNumber(now)

		today, err := u.tracker.EnsureDay(ctx, member, now)
		if err != nil {
			glog.Errorf("Error while ensuring tracker day: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		debt, err := u.tracker.RecomputeDebt(ctx, member, now)
		if err != nil {
			glog.Errorf("Error while recomputing debt: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		params.DebtPages = debt

		params.Today = ramadanDayView(today, window)
	}

	days, err := u.tracker.Days(ctx, member)
	if err != nil {
		glog.Errorf("Error while listing tracker days: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	for _, day := range days {
		params.Days = append(params.Days, ramadanDayView(day, window))
	}

	if params.PeriodOwner {
		history, err := u.tracker.History(ctx, member)
		if err != nil {
			glog.Errorf("Error while listing period history: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		for _, entry := range history {
			v := &uitemplates.PeriodHistoryView{
				StartDate:  entry.StartDate.Format("2006-01-02"),
				MissedDays: entry.MissedDays,
				Open:       entry.EndDate == nil,
			}
			if entry.EndDate != nil {
				v.EndDate = entry.EndDate.Format("2006-01-02")
			}
			params.History = append(params.History, v)
		}
		params.TotalMissedDays = ramadan.TotalMissedDays(history)
	}

	render(w, uitemplates.RamadanTemplate, params)
}

func ramadanDayView(day *dbtypes.RamadanDay, window ramadan.Window) *uitemplates.RamadanDayView {
	return &uitemplates.RamadanDayView{
		Date:      day.Date.Format("2006-01-02"),
		DayNumber: window.DayNumber(day.Date),

		Fajr:    day.Fajr,
		Dhuhr:   day.Dhuhr,
		Asr:     day.Asr,
		Maghrib: day.Maghrib,
		Isha:    day.Isha,

		FajrPages:    day.FajrPages,
		DhuhrPages:   day.DhuhrPages,
		AsrPages:     day.AsrPages,
		MaghribPages: day.MaghribPages,
		IshaPages:    day.IshaPages,

		Fasting:            day.Fasting,
		NightPrayer:        day.NightPrayer,
		MorningRemembrance: day.MorningRemembrance,
		EveningRemembrance: day.EveningRemembrance,

		OnPeriod:         day.OnPeriod,
		PeriodQuranPages: day.PeriodQuranPages,

		PagesRead: ramadan.PagesRead(day),
	}
}

// ramadanDayHandler saves the checklist form for a single day.
func (u *WebUI) ramadanDayHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ramadan/day" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	date, err := time.ParseInLocation("2006-01-02", r.PostForm.Get("date"), time.Local)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	partial := map[string]any{
		"fajr":               r.PostForm.Get("fajr") != "",
		"dhuhr":              r.PostForm.Get("dhuhr") != "",
		"asr":                r.PostForm.Get("asr") != "",
		"maghrib":            r.PostForm.Get("maghrib") != "",
		"isha":               r.PostForm.Get("isha") != "",
		"fasting":            r.PostForm.Get("fasting") != "",
		"nightPrayer":        r.PostForm.Get("night-prayer") != "",
		"morningRemembrance": r.PostForm.Get("morning-remembrance") != "",
		"eveningRemembrance": r.PostForm.Get("evening-remembrance") != "",
	}
	for form, field := range map[string]string{
		"fajr-pages":         "fajrPages",
		"dhuhr-pages":        "dhuhrPages",
		"asr-pages":          "asrPages",
		"maghrib-pages":      "maghribPages",
		"isha-pages":         "ishaPages",
		"period-quran-pages": "periodQuranPages",
	} {
		raw := r.PostForm.Get(form)
		if raw == "" {
			continue
		}
		pages, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pages < 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		partial[field] = pages
	}

	switch err := u.tracker.UpdateDay(ctx, member, date, partial); err {
	case nil:
	case ramadan.ErrOutsideWindow, ramadan.ErrNotOwner:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	default:
		glog.Errorf("Error while updating tracker day: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/ramadan", http.StatusFound)
}

// ramadanPeriodHandler toggles the period state for the owning member.
func (u *WebUI) ramadanPeriodHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ramadan/period" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	date, err := time.ParseInLocation("2006-01-02", r.PostForm.Get("date"), time.Local)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	on := r.PostForm.Get("on") == "true"

	switch err := u.tracker.SetPeriod(ctx, member, date, on); err {
	case nil:
	case ramadan.ErrPeriodSingleUser, ramadan.ErrOutsideWindow, ramadan.ErrNoOpenPeriod:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	default:
		glog.Errorf("Error while toggling period state: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/ramadan", http.StatusFound)
}
