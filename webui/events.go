package webui

import (
	"fmt"
	"net/http"

	"github.com/golang/glog"
)

// eventsHandler streams unread-count updates over server-sent events.
// The browser feeds them into the navbar badge without polling.
func (u *WebUI) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/events" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	member, ok, err := u.loggedInMember(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in member: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming Unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	mirror := u.notes.WatchFeed(ctx, member)
	defer mirror.Close()

	emit := func() bool {
		unread, err := u.notes.UnreadCount(ctx, member)
		if err != nil {
			glog.Errorf("Error while counting unread notifications: %v", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: unread\ndata: %d\n\n", unread); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !emit() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-mirror.Done():
			// The watch goroutine stopped.  Ending the response lets the
			// browser's EventSource reconnect onto a fresh mirror.
			if err := mirror.Err(); err != nil {
				glog.Errorf("Notification mirror failed: %v", err)
			}
			return
		case <-mirror.Updates():
			if !emit() {
				return
			}
		}
	}
}
