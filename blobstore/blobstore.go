// Package blobstore fronts the GCS bucket that holds uploaded photos.
// Objects are addressed by a retrieval URL; callers never see bucket or
// key names directly.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

const urlPrefix = "https://storage.googleapis.com/"

// uploadChunkBytes is the copy granularity; progress advances once per
// chunk.
const uploadChunkBytes = 256 * 1024

var (
	ErrForeignURL    = errors.New("retrieval URL does not point into this bucket")
	ErrUploadRunning = errors.New("an upload is already in progress")
)

// Store uploads and deletes blobs in a single bucket.  At most one upload
// runs at a time; Uploading/Progress/Err expose its observable state.
type Store struct {
	gcs    *storage.Client
	bucket string

	mu        sync.Mutex
	uploading bool
	progress  int
	err       error

	now func() time.Time
}

func New(gcs *storage.Client, bucket string) *Store {
	return &Store{
		gcs:    gcs,
		bucket: bucket,
		now:    time.Now,
	}
}

// Uploading reports whether an upload is in flight.
func (s *Store) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Progress returns the current upload progress, 0-100.  It is monotonic
// within one upload and reaches 100 only on success.
func (s *Store) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Err returns the error from the most recent upload or delete, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ObjectKey forms the storage key for an upload: the path prefix plus a
// millisecond timestamp and the original filename.  The timestamp keeps
// same-named uploads from colliding.
func ObjectKey(pathPrefix, filename string, at time.Time) string {
	return fmt.Sprintf("%s/%d_%s", strings.Trim(pathPrefix, "/"), at.UnixMilli(), filename)
}

// RetrievalURL forms the public URL for a stored object.
func RetrievalURL(bucket, key string) string {
	return urlPrefix + bucket + "/" + key
}

// KeyFromURL resolves a retrieval URL back to the object key inside
// bucket.  URLs pointing anywhere else are rejected.
func KeyFromURL(bucket, retrievalURL string) (string, error) {
	rest, ok := strings.CutPrefix(retrievalURL, urlPrefix+bucket+"/")
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, retrievalURL)
	}
	return rest, nil
}

// Upload stores size bytes from r under pathPrefix and returns the
// retrieval URL together with the object key, which document records
// must carry alongside the URL.  On failure the observable state is
// reset to pre-attempt (uploading false, progress 0) with Err set.
func (s *Store) Upload(ctx context.Context, r io.Reader, size int64, pathPrefix, filename string) (retrievalURL, key string, err error) {
	s.mu.Lock()
	if s.uploading {
		s.mu.Unlock()
		return "", "", ErrUploadRunning
	}
	s.uploading = true
	s.progress = 0
	s.err = nil
	s.mu.Unlock()

	key = ObjectKey(pathPrefix, filename, s.now())

	url, err := s.doUpload(ctx, r, size, key)

	s.mu.Lock()
	s.uploading = false
	if err != nil {
		s.progress = 0
		s.err = err
	} else {
		s.progress = 100
	}
	s.mu.Unlock()

	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

func (s *Store) doUpload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	w := s.gcs.Bucket(s.bucket).Object(key).NewWriter(ctx)

	var written int64
	buf := make([]byte, uploadChunkBytes)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				w.Close()
				return "", fmt.Errorf("while writing object %q: %w", key, err)
			}
			written += int64(n)
			s.setProgress(chunkProgress(written, size))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			w.Close()
			return "", fmt.Errorf("while reading upload body: %w", readErr)
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("while finalizing object %q: %w", key, err)
	}

	return RetrievalURL(s.bucket, key), nil
}

func (s *Store) setProgress(p int) {
	s.mu.Lock()
	if p > s.progress {
		s.progress = p
	}
	s.mu.Unlock()
}

// chunkProgress maps bytes written to a 0-99 progress value; 100 is
// reserved for a successfully finalized object.
func chunkProgress(written, size int64) int {
	if size <= 0 {
		return 0
	}
	p := int(written * 100 / size)
	if p > 99 {
		p = 99
	}
	return p
}

// Delete removes the object a retrieval URL points at.  Deleting an
// object that no longer exists is surfaced as an error, not a panic; the
// caller decides whether that matters.
func (s *Store) Delete(ctx context.Context, retrievalURL string) error {
	key, err := KeyFromURL(s.bucket, retrievalURL)
	if err != nil {
		return err
	}

	if err := s.gcs.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		err = fmt.Errorf("while deleting object %q: %w", key, err)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}

	return nil
}
