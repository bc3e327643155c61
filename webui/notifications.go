package webui

import (
	"net/http"

	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// notificationsHandler renders the recent feed for the logged-in member.
func (u *WebUI) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/notifications" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	feed, err := u.notes.Feed(ctx, member)
	if err != nil {
		glog.Errorf("Error while listing notifications: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	unread, err := u.notes.UnreadCount(ctx, member)
	if err != nil {
		glog.Errorf("Error while counting unread notifications: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.NotificationsParams{UnreadCount: unread}
	for _, n := range feed {
		params.Items = append(params.Items, &uitemplates.NotificationEntry{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Kind:      n.Kind,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	render(w, uitemplates.NotificationsTemplate, params)
}

// notificationsSendHandler sends a free-form note to the partner.
func (u *WebUI) notificationsSendHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/notifications/send" || r.Method != http.MethodPost {
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

	title := r.PostForm.Get("title")
	if title == "" {
		render(w, uitemplates.NotificationsTemplate, &uitemplates.NotificationsParams{
			UserError: "Title must not be empty",
		})
		return
	}

	if err := u.notes.Send(ctx, member, title, r.PostForm.Get("body"), dbtypes.NotifyNote); err != nil {
		glog.Errorf("Error while sending note: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusFound)
}

func (u *WebUI) notificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/notifications/read" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	if err := u.notes.MarkRead(r.Context(), r.PostForm.Get("id")); err != nil {
		glog.Errorf("Error while marking notification read: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusFound)
}

func (u *WebUI) notificationsReadAllHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/notifications/read-all" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	if err := u.notes.MarkAllRead(r.Context(), member); err != nil {
		glog.Errorf("Error while marking all notifications read: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusFound)
}

// notificationsDeviceHandler stores a browser push token for the member.
func (u *WebUI) notificationsDeviceHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/notifications/device" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	member, ok := u.requireMember(w, r)
	if !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	token := r.PostForm.Get("token")
	if token == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := u.notes.RegisterDevice(r.Context(), member, token); err != nil {
		glog.Errorf("Error while registering device: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
