// Package webui serves the HTML surface of Our Story.
package webui

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"time"

	"ourstory/blobstore"
	"ourstory/dblayer"
	"ourstory/identity"
	"ourstory/notify"
	"ourstory/ramadan"

	"github.com/golang/glog"
)

const sessionCookieName = "OurStory-Session"

type WebUI struct {
	db      *dblayer.DB
	blobs   *blobstore.Store
	notes   *notify.Center
	tracker *ramadan.Tracker

	cycleEpoch time.Time
}

func New(db *dblayer.DB, blobs *blobstore.Store, notes *notify.Center, tracker *ramadan.Tracker, cycleEpoch time.Time) *WebUI {
	return &WebUI{
		db:         db,
		blobs:      blobs,
		notes:      notes,
		tracker:    tracker,
		cycleEpoch: cycleEpoch,
	}
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/log-in", u.logInHandler)
	m.HandleFunc("/log-out", u.logOutHandler)
	m.HandleFunc("/dates", u.datesHandler)
	m.HandleFunc("/dates/update", u.datesUpdateHandler)
	m.HandleFunc("/dates/delete", u.datesDeleteHandler)
	m.HandleFunc("/timeline", u.timelineHandler)
	m.HandleFunc("/timeline/delete", u.timelineDeleteHandler)
	m.HandleFunc("/wishes", u.wishesHandler)
	m.HandleFunc("/wishes/reveal", u.wishesRevealHandler)
	m.HandleFunc("/watchplay", u.watchPlayHandler)
	m.HandleFunc("/watchplay/update", u.watchPlayUpdateHandler)
	m.HandleFunc("/watchplay/delete", u.watchPlayDeleteHandler)
	m.HandleFunc("/watchplay/random", u.watchPlayRandomHandler)
	m.HandleFunc("/photos", u.photosHandler)
	m.HandleFunc("/photos/delete", u.photosDeleteHandler)
	m.HandleFunc("/ramadan", u.ramadanHandler)
	m.HandleFunc("/ramadan/day", u.ramadanDayHandler)
	m.HandleFunc("/ramadan/period", u.ramadanPeriodHandler)
	m.HandleFunc("/cycle", u.cycleHandler)
	m.HandleFunc("/notifications", u.notificationsHandler)
	m.HandleFunc("/notifications/send", u.notificationsSendHandler)
	m.HandleFunc("/notifications/read", u.notificationsReadHandler)
	m.HandleFunc("/notifications/read-all", u.notificationsReadAllHandler)
	m.HandleFunc("/notifications/device", u.notificationsDeviceHandler)
	m.HandleFunc("/events", u.eventsHandler)
}

// loggedInMember resolves the session cookie in the request to a member.
// ok is false when the user is not logged in; err is reserved for real
// backend failures.
func (u *WebUI) loggedInMember(ctx context.Context, r *http.Request) (member identity.Member, ok bool, err error) {
	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		// No session cookie; user is not logged in.
		return "", false, nil
	}

	member, err = u.db.MemberFromSessionCookie(ctx, sessionCookie.Value)
	if err == dblayer.ErrUserNotLoggedIn {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return member, true, nil
}

// requireMember is loggedInMember plus the standard redirect-or-500
// handling.  When ok is false the response has already been written.
func (u *WebUI) requireMember(w http.ResponseWriter, r *http.Request) (identity.Member, bool) {
	member, ok, err := u.loggedInMember(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in member: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return "", false
	}
	if !ok {
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return "", false
	}
	return member, true
}

// render executes the template into a buffer before touching the
// ResponseWriter, so a template error can still produce a clean 500.
func render(w http.ResponseWriter, t *template.Template, params any) {
	content := bytes.Buffer{}
	if err := t.Execute(&content, params); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(w, &content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
		return
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return false
	}
	return true
}
