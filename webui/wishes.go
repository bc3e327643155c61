package webui

import (
	"net/http"
	"time"

	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// wishesHandler lists the wish jar and accepts new wishes.
func (u *WebUI) wishesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/wishes" {
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

		unlock, err := time.ParseInLocation("2006-01-02", r.PostForm.Get("unlock-date"), time.Local)
		if err != nil {
			userErr = "Could not parse the unlock date"
		}

		if userErr == "" {
			wish := &dbtypes.Wish{
				Text:       r.PostForm.Get("text"),
				Author:     member.String(),
				UnlockDate: unlock,
			}
			if err := wish.Validate(); err == dbtypes.ErrMissingBody {
				userErr = "A wish needs some words"
			} else if err != nil {
				glog.Errorf("Error while validating wish: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			if userErr == "" {
				if _, err := u.db.CreateWish(ctx, wish); err != nil {
					glog.Errorf("Error while creating wish: %v", err)
					http.Error(w, "Internal Error", http.StatusInternalServerError)
					return
				}
				http.Redirect(w, r, "/wishes", http.StatusFound)
				return
			}
		}
	}

	wishes, err := u.db.Wishes(ctx)
	if err != nil {
		glog.Errorf("Error while listing wishes: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	params := &uitemplates.WishesParams{UserError: userErr}
	for _, wish := range wishes {
		entry := &uitemplates.WishEntry{
			ID:         wish.ID,
			Author:     wish.Author,
			UnlockDate: wish.UnlockDate.Format("2006-01-02"),
			Revealed:   wish.Revealed,
			CanReveal:  wish.CanReveal(now),
		}
		// The text of a sealed wish never leaves the server.
		if wish.Revealed {
			entry.Text = wish.Text
		}
		params.Wishes = append(params.Wishes, entry)
	}

	render(w, uitemplates.WishesTemplate, params)
}

// wishesRevealHandler opens a wish once its unlock date has arrived.
func (u *WebUI) wishesRevealHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/wishes/reveal" || r.Method != http.MethodPost {
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

	err := u.db.RevealWish(ctx, r.PostForm.Get("id"), time.Now())
	switch err {
	case nil:
	case dblayer.ErrStillLocked, dblayer.ErrAlreadyRevealed:
		// Stale page; a refresh shows the current state.
		http.Redirect(w, r, "/wishes", http.StatusFound)
		return
	default:
		glog.Errorf("Error while revealing wish: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	// Best-effort: the reveal already landed.
	if err := u.notes.Send(ctx, member, "A wish was opened", "Come see what it said.", dbtypes.NotifyWish); err != nil {
		glog.Errorf("Error while sending wish notification: %v", err)
	}

	http.Redirect(w, r, "/wishes", http.StatusFound)
}
