package webui

import (
	"net/http"
	"time"

	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// datesHandler lists date ideas and accepts new ones.
func (u *WebUI) datesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/dates" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	userErr := ""
	if r.Method == http.MethodPost {
		if !parseForm(w, r) {
			return
		}

		idea := &dbtypes.DateIdea{
			Title:       r.PostForm.Get("title"),
			Description: r.PostForm.Get("description"),
			Location:    r.PostForm.Get("location"),
			Category:    r.PostForm.Get("category"),
			Status:      dbtypes.DateStatusIdea,
			CreatedBy:   member.String(),
		}
		if err := idea.Validate(); err == dbtypes.ErrMissingTitle {
			userErr = "Title must not be empty"
		} else if err != nil {
			glog.Errorf("Error while validating date idea: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if userErr == "" {
			if _, err := u.db.CreateDateIdea(ctx, idea); err != nil {
				glog.Errorf("Error while creating date idea: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/dates", http.StatusFound)
			return
		}
	}

	ideas, err := u.db.DateIdeas(ctx)
	if err != nil {
		glog.Errorf("Error while listing date ideas: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ListDatesParams{UserError: userErr}
	for _, idea := range ideas {
		d := &uitemplates.ListDatesDate{
			ID:          idea.ID,
			Title:       idea.Title,
			Description: idea.Description,
			Location:    idea.Location,
			Category:    idea.Category,
			Status:      idea.Status,
		}
		if !idea.PlannedFor.IsZero() {
			d.PlannedFor = idea.PlannedFor.Format("2006-01-02")
		}
		params.Dates = append(params.Dates, d)
	}

	render(w, uitemplates.ListDatesTemplate, params)
}

// datesUpdateHandler moves a date idea through its lifecycle.
func (u *WebUI) datesUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/dates/update" || r.Method != http.MethodPost {
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

	status := r.PostForm.Get("status")

	var plannedFor time.Time
	if raw := r.PostForm.Get("planned-for"); raw != "" {
		var err error
		plannedFor, err = time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}

	if err := u.db.UpdateDateStatus(ctx, r.PostForm.Get("id"), status, plannedFor); err != nil {
		glog.Errorf("Error while updating date idea: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if status == dbtypes.DateStatusDone {
		// Best-effort: the update already landed.
		if err := u.notes.Send(ctx, member, "We did it!", "A date was marked done.", dbtypes.NotifyDate); err != nil {
			glog.Errorf("Error while sending date notification: %v", err)
		}
	}

	http.Redirect(w, r, "/dates", http.StatusFound)
}

func (u *WebUI) datesDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/dates/delete" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	if err := u.db.DeleteDateIdea(r.Context(), r.PostForm.Get("id")); err != nil {
		glog.Errorf("Error while deleting date idea: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dates", http.StatusFound)
}
