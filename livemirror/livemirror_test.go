package livemirror

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type memo struct {
	ID   string
	Text string
}

func testMirror() *Mirror[memo] {
	return newMirror[memo]("Memos", nil)
}

func TestPublishReplacesWholeList(t *testing.T) {
	m := testMirror()

	if !m.Loading() {
		t.Fatalf("New mirror should start in the loading state")
	}

	m.publish([]memo{{ID: "1", Text: "one"}, {ID: "2", Text: "two"}})
	m.publish([]memo{{ID: "3", Text: "three"}})

	want := []memo{{ID: "3", Text: "three"}}
	if diff := cmp.Diff(m.Documents(), want); diff != "" {
		t.Errorf("Bad mirror contents; diff (-got +want)\n%s", diff)
	}
	if m.Loading() {
		t.Errorf("Mirror still loading after a snapshot was published")
	}
}

func TestDocumentsReturnsACopy(t *testing.T) {
	m := testMirror()
	m.publish([]memo{{ID: "1", Text: "one"}})

	got := m.Documents()
	got[0].Text = "scribbled"

	if m.Documents()[0].Text != "one" {
		t.Errorf("Mutating the returned slice leaked into the mirror")
	}
}

func TestUpdatesCoalesceToNewest(t *testing.T) {
	m := testMirror()

	// Two publishes with no consumer in between; only the newest snapshot
	// should be waiting.
	m.publish([]memo{{ID: "1"}})
	m.publish([]memo{{ID: "2"}})

	got := <-m.Updates()
	want := []memo{{ID: "2"}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad coalesced update; diff (-got +want)\n%s", diff)
	}

	select {
	case extra := <-m.Updates():
		t.Errorf("Unexpected extra update %+v", extra)
	default:
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	m := testMirror()
	m.publish([]memo{{ID: "1"}})

	// Simulate the race where the watch goroutine decodes a snapshot
	// while Close runs: the late publish must not land.
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.publish([]memo{{ID: "2"}})

	want := []memo{{ID: "1"}}
	if diff := cmp.Diff(m.Documents(), want); diff != "" {
		t.Errorf("Late publish landed after close; diff (-got +want)\n%s", diff)
	}
}

func TestFailKeepsDocumentsAndSetsErr(t *testing.T) {
	m := testMirror()
	m.publish([]memo{{ID: "1"}})

	boom := errors.New("watch exploded")
	m.fail(boom)

	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v, want %v", m.Err(), boom)
	}
	if m.Loading() {
		t.Errorf("Mirror still loading after failure")
	}
	if len(m.Documents()) != 1 {
		t.Errorf("Failure discarded the last good snapshot")
	}
}

func TestDoneClosesAfterWatchFailure(t *testing.T) {
	m := testMirror()

	select {
	case <-m.Done():
		t.Fatalf("Done closed before the watch goroutine exited")
	default:
	}

	// Replicate the run exit sequence on a subscription failure: record
	// the error, then close done.
	m.fail(errors.New("stream broken"))
	close(m.done)

	select {
	case <-m.Done():
	default:
		t.Fatalf("Done still open after the watch goroutine exited")
	}
	if m.Err() == nil {
		t.Errorf("Err() = nil after a failed watch, want the subscription error")
	}
}

func TestPublishClearsEarlierError(t *testing.T) {
	m := testMirror()
	m.fail(errors.New("transient"))

	m.publish([]memo{{ID: "1"}})

	if m.Err() != nil {
		t.Errorf("Err() = %v after successful publish, want nil", m.Err())
	}
}
