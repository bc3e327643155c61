// Package livemirror maintains live local mirrors of Firestore
// collections, and centralizes the write discipline (server timestamps,
// merge-only updates) for every collection in the application.
//
// A Mirror holds the most recent query snapshot, fully decoded.  Each
// emitted snapshot replaces the whole mirrored list; there is no
// incremental diffing.  Mirrors are owned by whoever opened them and are
// never shared or deduplicated.
package livemirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Decoder converts one document snapshot into a T.
type Decoder[T any] func(snap *firestore.DocumentSnapshot) (T, error)

// Option adjusts the watched query.
type Option func(q firestore.Query) firestore.Query

// WithFilter restricts the watched query with an equality (or other
// Firestore operator) filter.
func WithFilter(path, op string, value any) Option {
	return func(q firestore.Query) firestore.Query {
		return q.Where(path, op, value)
	}
}

// WithLimit caps the watched query at n documents.
func WithLimit(n int) Option {
	return func(q firestore.Query) firestore.Query {
		return q.Limit(n)
	}
}

// Mirror is a live local copy of one collection query, ordered by
// createdAt descending.
type Mirror[T any] struct {
	collection string
	decode     Decoder[T]

	mu      sync.Mutex
	docs    []T
	loading bool
	err     error
	closed  bool

	updates chan []T
	cancel  context.CancelFunc
	done    chan struct{}
}

// Watch opens a live subscription to the named collection, ordered by
// createdAt descending.  The returned Mirror starts in the loading state
// and leaves it when the first snapshot (or the first error) arrives.
//
// The subscription stays attached until Close is called; delivery errors
// are recorded on the mirror but no automatic retry is attempted, since
// reconnection is the Firestore client's job.
func Watch[T any](ctx context.Context, client *firestore.Client, collection string, decode Decoder[T], opts ...Option) *Mirror[T] {
	ctx, cancel := context.WithCancel(ctx)

	m := newMirror[T](collection, decode)
	m.cancel = cancel

	q := client.Collection(collection).OrderBy("createdAt", firestore.Desc)
	for _, opt := range opts {
		q = opt(q)
	}

	go m.run(ctx, q)

	return m
}

func newMirror[T any](collection string, decode Decoder[T]) *Mirror[T] {
	return &Mirror[T]{
		collection: collection,
		decode:     decode,
		loading:    true,
		updates:    make(chan []T, 1),
		done:       make(chan struct{}),
	}
}

func (m *Mirror[T]) run(ctx context.Context, q firestore.Query) {
	defer close(m.done)

	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				// Detached via Close; not an error.
				return
			}
			slog.Error("Collection watch failed", "collection", m.collection, "err", err)
			m.fail(err)
			return
		}

		docs := make([]T, 0, snap.Size)
		docsIter := snap.Documents
		decodeFailed := false
		for {
			docSnap, err := docsIter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				m.fail(fmt.Errorf("while iterating snapshot of %s: %w", m.collection, err))
				decodeFailed = true
				break
			}

			doc, err := m.decode(docSnap)
			if err != nil {
				m.fail(fmt.Errorf("while decoding document %s/%s: %w", m.collection, docSnap.Ref.ID, err))
				decodeFailed = true
				break
			}
			docs = append(docs, doc)
		}
		if decodeFailed {
			return
		}

		m.publish(docs)
	}
}

// publish replaces the mirrored list and pushes it to the updates
// channel, coalescing with any undelivered previous snapshot.  Publishes
// racing with Close are dropped so no update lands after detach.
func (m *Mirror[T]) publish(docs []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.docs = docs
	m.loading = false
	m.err = nil

	select {
	case <-m.updates:
	default:
	}
	m.updates <- docs
}

func (m *Mirror[T]) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.err = err
	m.loading = false
}

// Documents returns a copy of the current mirror.
func (m *Mirror[T]) Documents() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.docs))
	copy(out, m.docs)
	return out
}

// Updates delivers each replacement list.  Slow consumers only ever see
// the most recent snapshot; intermediate ones are coalesced away.
func (m *Mirror[T]) Updates() <-chan []T {
	return m.updates
}

// Loading reports whether the first snapshot is still outstanding.
func (m *Mirror[T]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Done is closed when the watch goroutine has exited, whether through
// Close or a subscription failure.  Err distinguishes the two.
func (m *Mirror[T]) Done() <-chan struct{} {
	return m.done
}

// Err returns the subscription error, if any.
func (m *Mirror[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Close synchronously detaches the subscription.  When Close returns, no
// further update will be delivered, state no longer changes, and the
// watch goroutine has exited.  Close is idempotent.
func (m *Mirror[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	<-m.done
}

// Add creates a document in the named collection.  The store assigns the
// id, createdAt is stamped with the server timestamp, and every other
// field passes through verbatim.  Returns the assigned id.
func Add(ctx context.Context, client *firestore.Client, collection string, fields map[string]any) (string, error) {
	ref := client.Collection(collection).NewDoc()

	fields["id"] = ref.ID
	fields["createdAt"] = firestore.ServerTimestamp

	if _, err := ref.Create(ctx, fields); err != nil {
		return "", fmt.Errorf("while creating document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Update merges the partial fields into an existing document and stamps
// updatedAt with the server timestamp.  Fields absent from partial are
// left untouched; the id field is immutable and silently dropped from
// partial if present.
func Update(ctx context.Context, client *firestore.Client, collection, id string, partial map[string]any) error {
	ups := []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	for k, v := range partial {
		if k == "id" || k == "createdAt" {
			continue
		}
		ups = append(ups, firestore.Update{Path: k, Value: v})
	}

	if _, err := client.Collection(collection).Doc(id).Update(ctx, ups); err != nil {
		return fmt.Errorf("while updating document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document.  Related blobs are not cascaded; that is the
// caller's responsibility (see the photo delete saga in dblayer).
func Delete(ctx context.Context, client *firestore.Client, collection, id string) error {
	if _, err := client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting document %s/%s: %w", collection, id, err)
	}
	return nil
}
