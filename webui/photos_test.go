package webui

import (
	"errors"
	"testing"
	"time"

	"ourstory/blobstore"
	"ourstory/dbtypes"
	"ourstory/identity"
)

// The upload handler must carry both halves of the blob reference into
// the album record, or the create-side validation rejects the document
// after the blob is already stored.
func TestUploadedPhotoDocumentIsStorable(t *testing.T) {
	key := blobstore.ObjectKey("photos", "beach.jpg", time.UnixMilli(1700000000123))
	url := blobstore.RetrievalURL("our-story-media", key)

	photo := photoDocument(identity.MemberA, "first swim of the year", url, key)

	if err := photo.Validate(); err != nil {
		t.Fatalf("Upload handler builds an unstorable photo document: %v", err)
	}
	if photo.StorageKey != key {
		t.Errorf("StorageKey = %q, want %q", photo.StorageKey, key)
	}

	// The delete saga resolves the URL back to the same key it stores.
	resolved, err := blobstore.KeyFromURL("our-story-media", photo.RetrievalURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resolved != photo.StorageKey {
		t.Errorf("KeyFromURL = %q, want stored key %q", resolved, photo.StorageKey)
	}
}

func TestPhotoDocumentWithoutKeyIsRejected(t *testing.T) {
	photo := photoDocument(identity.MemberA, "caption", "https://storage.googleapis.com/b/k", "")

	if err := photo.Validate(); !errors.Is(err, dbtypes.ErrMissingBlob) {
		t.Fatalf("Validate = %v, want ErrMissingBlob", err)
	}
}
