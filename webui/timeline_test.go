package webui

import (
	"bytes"
	"strings"
	"testing"

	"ourstory/webui/uitemplates"
)

// The new-memory form must be a multipart form carrying a photo field,
// or the handler's optional attachment path can never be reached.
func TestTimelineFormAcceptsPhotoUpload(t *testing.T) {
	buf := bytes.Buffer{}
	if err := uitemplates.TimelineTemplate.Execute(&buf, &uitemplates.TimelineParams{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	page := buf.String()
	if !strings.Contains(page, `enctype="multipart/form-data"`) {
		t.Errorf("New memory form is not multipart; file uploads would arrive empty")
	}
	if !strings.Contains(page, `name="photo"`) {
		t.Errorf("New memory form has no photo field")
	}
}

func TestTimelineEntryRendersAttachedPhoto(t *testing.T) {
	params := &uitemplates.TimelineParams{
		Items: []*uitemplates.TimelineEntry{{
			ID:       "abc",
			Title:    "Picnic",
			Body:     "We found the good spot again.",
			Date:     "2026-05-02",
			PhotoURL: "https://storage.googleapis.com/our-story-media/photos/picnic.jpg",
		}},
	}

	buf := bytes.Buffer{}
	if err := uitemplates.TimelineTemplate.Execute(&buf, params); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `src="https://storage.googleapis.com/our-story-media/photos/picnic.jpg"`) {
		t.Errorf("Attached photo URL not rendered in the timeline entry")
	}
}
