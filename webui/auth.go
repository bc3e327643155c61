package webui

import (
	"context"
	"net/http"
	"time"

	"ourstory/cycle"
	"ourstory/dblayer"
	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// homeHandler renders the home page.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	params := &uitemplates.HomeParams{}

	_, ok, err := u.loggedInMember(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in member: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if ok {
		params.LoggedIn = true
		day := cycle.CurrentCycleDay(time.Now(), u.cycleEpoch)
		params.CycleDay = day
		if phase, err := cycle.PhaseForDay(day); err == nil {
			params.Phase = phase.String()
		}
	}

	render(w, uitemplates.HomeTemplate, params)
}

// doLogIn exchanges credentials for a session cookie.  toast carries
// user-visible failures; err carries internal ones.
func (u *WebUI) doLogIn(ctx context.Context, email, password, googleCredential string) (cookie *http.Cookie, toast string, err error) {
	var session *dbtypes.Session
	if googleCredential != "" {
		session, err = u.db.SessionFromGoogleFederation(ctx, googleCredential)
	} else {
		session, err = u.db.SessionFromPassword(ctx, email, password)
	}
	switch err {
	case nil:
	case dblayer.ErrEmailMustNotBeEmpty:
		return nil, "Email must not be empty", nil
	case dblayer.ErrPasswordMustNotBeEmpty:
		return nil, "Password must not be empty", nil
	case dblayer.ErrUnknownUserOrWrongPassword:
		return nil, "Unknown user or wrong password", nil
	default:
		return nil, "", err
	}

	cookie = &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Cookie,
		SameSite: http.SameSiteStrictMode,
		Expires:  session.Expires,
	}

	return cookie, "", nil
}

// logInHandler renders the login page and processes login forms.
func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-in" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	_, ok, err := u.loggedInMember(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in member: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if ok {
		// User is already logged in.  Send them back home.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		// The user is submitting a login form.

		if !parseForm(w, r) {
			return
		}

		cookie, userErr, err := u.doLogIn(ctx, r.PostForm.Get("email"), r.PostForm.Get("password"), r.PostForm.Get("credential"))
		if err != nil {
			glog.Errorf("Error while processing log in form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if userErr != "" {
			render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{UserError: userErr})
			return
		}

		// User successfully logged in.
		http.SetCookie(w, cookie)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// Otherwise, render login form.
	render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{})
}

// logOutHandler tears down the session behind the request's cookie.
func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-out" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	for _, cookie := range r.Cookies() {
		if cookie.Name != sessionCookieName {
			continue
		}
		if err := u.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			glog.Errorf("Error while deleting session: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
