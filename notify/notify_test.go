package notify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeenSetPrimesOnFirstObserve(t *testing.T) {
	s := NewSeenSet()

	// The initial snapshot replays history; none of it is "new".
	fresh := s.Observe([]string{"n1", "n2", "n3"})
	if len(fresh) != 0 {
		t.Errorf("First observe reported %v as fresh, want none", fresh)
	}
}

func TestSeenSetReportsOnlyNewIDs(t *testing.T) {
	s := NewSeenSet()
	s.Observe([]string{"n1", "n2"})

	fresh := s.Observe([]string{"n3", "n1", "n2"})
	want := []string{"n3"}
	if diff := cmp.Diff(fresh, want); diff != "" {
		t.Errorf("Bad fresh ids; diff (-got +want)\n%s", diff)
	}

	// A document never becomes fresh twice.
	if again := s.Observe([]string{"n3"}); len(again) != 0 {
		t.Errorf("Second observe of n3 reported %v as fresh", again)
	}
}

func TestSeenSetEmptyInitialSnapshot(t *testing.T) {
	s := NewSeenSet()

	// Priming on an empty collection still counts as the initial load.
	if fresh := s.Observe(nil); len(fresh) != 0 {
		t.Errorf("Priming observe reported %v as fresh", fresh)
	}

	fresh := s.Observe([]string{"n1"})
	want := []string{"n1"}
	if diff := cmp.Diff(fresh, want); diff != "" {
		t.Errorf("Bad fresh ids; diff (-got +want)\n%s", diff)
	}
}
