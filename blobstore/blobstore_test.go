package blobstore

import (
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	got := ObjectKey("photos", "beach.jpg", at)
	want := "photos/1700000000123_beach.jpg"
	if got != want {
		t.Errorf("ObjectKey = %q, want %q", got, want)
	}

	// Prefixes are normalized so keys never start with or double a slash.
	got = ObjectKey("/photos/", "beach.jpg", at)
	if got != want {
		t.Errorf("ObjectKey with slashed prefix = %q, want %q", got, want)
	}
}

func TestKeyFromURLRoundTrip(t *testing.T) {
	url := RetrievalURL("our-story-media", "photos/1700000000123_beach.jpg")

	key, err := KeyFromURL("our-story-media", url)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if key != "photos/1700000000123_beach.jpg" {
		t.Errorf("KeyFromURL = %q, want %q", key, "photos/1700000000123_beach.jpg")
	}
}

func TestKeyFromURLRejectsForeignURLs(t *testing.T) {
	bad := []string{
		"https://storage.googleapis.com/some-other-bucket/photos/x.jpg",
		"https://example.com/our-story-media/photos/x.jpg",
		"https://storage.googleapis.com/our-story-media/",
		"",
	}
	for _, url := range bad {
		if _, err := KeyFromURL("our-story-media", url); err == nil {
			t.Errorf("KeyFromURL(%q) succeeded, want error", url)
		}
	}
}

func TestChunkProgress(t *testing.T) {
	tests := []struct {
		written, size int64
		want          int
	}{
		{0, 1000, 0},
		{500, 1000, 50},
		{1000, 1000, 99}, // 100 is reserved for a finalized object
		{2000, 1000, 99},
		{10, 0, 0}, // unknown size
	}
	for _, tc := range tests {
		if got := chunkProgress(tc.written, tc.size); got != tc.want {
			t.Errorf("chunkProgress(%d, %d) = %d, want %d", tc.written, tc.size, got, tc.want)
		}
	}
}
