package webui

import (
	mathrand "math/rand"
	"net/http"
	"strconv"
	"time"

	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// watchPlayHandler lists the watch/play backlog and accepts new items.
func (u *WebUI) watchPlayHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/watchplay" {
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

		item := &dbtypes.WatchItem{
			Title:     r.PostForm.Get("title"),
			Kind:      r.PostForm.Get("kind"),
			Status:    dbtypes.WatchStatusBacklog,
			CreatedBy: member.String(),
		}
		switch err := item.Validate(); err {
		case nil:
		case dbtypes.ErrMissingTitle:
			userErr = "Title must not be empty"
		case dbtypes.ErrBadKind:
			userErr = "Pick a movie, series, or game"
		default:
			glog.Errorf("Error while validating watch item: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if userErr == "" {
			if _, err := u.db.CreateWatchItem(ctx, item); err != nil {
				glog.Errorf("Error while creating watch item: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/watchplay", http.StatusFound)
			return
		}
	}

	u.renderWatchPlay(w, r, userErr, nil)
}

func (u *WebUI) renderWatchPlay(w http.ResponseWriter, r *http.Request, userErr string, pick *dbtypes.WatchItem) {
	items, err := u.db.WatchItems(r.Context())
	if err != nil {
		glog.Errorf("Error while listing watch items: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.WatchPlayParams{UserError: userErr}
	if pick != nil {
		params.Pick = &uitemplates.WatchPlayEntry{
			ID:    pick.ID,
			Title: pick.Title,
			Kind:  pick.Kind,
		}
	}
	for _, item := range items {
		params.Items = append(params.Items, &uitemplates.WatchPlayEntry{
			ID:     item.ID,
			Title:  item.Title,
			Kind:   item.Kind,
			Status: item.Status,
			Rating: item.Rating,
		})
	}

	render(w, uitemplates.WatchPlayTemplate, params)
}

// watchPlayUpdateHandler moves an item through its lifecycle and records
// a rating once it is done.
func (u *WebUI) watchPlayUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/watchplay/update" || r.Method != http.MethodPost {
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

	rating, err := strconv.ParseInt(r.PostForm.Get("rating"), 10, 64)
	if err != nil {
		rating = 0
	}

	status := r.PostForm.Get("status")
	if err := u.db.UpdateWatchStatus(ctx, r.PostForm.Get("id"), status, rating); err != nil {
		glog.Errorf("Error while updating watch item: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if status == dbtypes.WatchStatusDone {
		// Best-effort: the update already landed.
		if err := u.notes.Send(ctx, member, "Finished one!", "Something moved to the done pile.", dbtypes.NotifyWatchPlay); err != nil {
			glog.Errorf("Error while sending watch/play notification: %v", err)
		}
	}

	http.Redirect(w, r, "/watchplay", http.StatusFound)
}

func (u *WebUI) watchPlayDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/watchplay/delete" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	if err := u.db.DeleteWatchItem(r.Context(), r.PostForm.Get("id")); err != nil {
		glog.Errorf("Error while deleting watch item: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/watchplay", http.StatusFound)
}

// watchPlayRandomHandler picks a random backlog item for tonight.
func (u *WebUI) watchPlayRandomHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/watchplay/random" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	items, err := u.db.WatchItems(r.Context())
	if err != nil {
		glog.Errorf("Error while listing watch items: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	rng := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	pick, found := dblayer.PickRandomBacklog(items, rng)
	if !found {
		u.renderWatchPlay(w, r, "Nothing in the backlog to pick from", nil)
		return
	}

	u.renderWatchPlay(w, r, "", pick)
}
