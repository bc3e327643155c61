package webui

import (
	"net/http"
	"time"

	"ourstory/dbtypes"
	"ourstory/webui/uitemplates"

	"github.com/golang/glog"
)

// timelineHandler lists the shared journal and accepts new entries.
func (u *WebUI) timelineHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/timeline" {
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
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			glog.Errorf("Error while parsing multipart form: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		date := time.Now()
		if raw := r.FormValue("date"); raw != "" {
			var err error
			date, err = time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
		}

		// The photo is optional; when present it goes through the same
		// blob path as the album.
		photoURL := ""
		file, header, err := r.FormFile("photo")
		switch err {
		case nil:
			defer file.Close()
			photoURL, _, err = u.uploadImageBlob(ctx, file, header.Filename)
			if err != nil {
				glog.Errorf("Error while uploading timeline photo blob: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
		case http.ErrMissingFile:
		default:
			glog.Errorf("Error while reading uploaded file: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		item := &dbtypes.TimelineItem{
			Title:     r.FormValue("title"),
			Body:      r.FormValue("body"),
			Date:      date,
			Mood:      r.FormValue("mood"),
			PhotoURL:  photoURL,
			CreatedBy: member.String(),
		}
		switch err := item.Validate(); err {
		case nil:
		case dbtypes.ErrMissingTitle:
			userErr = "Title must not be empty"
		case dbtypes.ErrMissingBody:
			userErr = "Body must not be empty"
		default:
			glog.Errorf("Error while validating timeline item: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if userErr == "" {
			if _, err := u.db.CreateTimelineItem(ctx, item); err != nil {
				glog.Errorf("Error while creating timeline item: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			// Best-effort: the entry already landed.
			if err := u.notes.Send(ctx, member, "New memory", item.Title, dbtypes.NotifyTimeline); err != nil {
				glog.Errorf("Error while sending timeline notification: %v", err)
			}

			http.Redirect(w, r, "/timeline", http.StatusFound)
			return
		}
	}

	items, err := u.db.TimelineItems(ctx)
	if err != nil {
		glog.Errorf("Error while listing timeline items: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.TimelineParams{UserError: userErr}
	for _, item := range items {
		params.Items = append(params.Items, &uitemplates.TimelineEntry{
			ID:       item.ID,
			Title:    item.Title,
			Body:     item.Body,
			Date:     item.Date.Format("2006-01-02"),
			Mood:     item.Mood,
			PhotoURL: item.PhotoURL,
		})
	}

	render(w, uitemplates.TimelineTemplate, params)
}

func (u *WebUI) timelineDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/timeline/delete" || r.Method != http.MethodPost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, ok := u.requireMember(w, r); !ok {
		return
	}

	if !parseForm(w, r) {
		return
	}

	if err := u.db.DeleteTimelineItem(r.Context(), r.PostForm.Get("id")); err != nil {
		glog.Errorf("Error while deleting timeline item: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/timeline", http.StatusFound)
}
