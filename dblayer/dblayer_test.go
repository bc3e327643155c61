package dblayer

import (
	"math/rand"
	"testing"

	"ourstory/dbtypes"
)

func TestPickRandomBacklogOnlyConsidersBacklog(t *testing.T) {
	items := []*dbtypes.WatchItem{
		{ID: "1", Title: "done thing", Status: dbtypes.WatchStatusDone},
		{ID: "2", Title: "current thing", Status: dbtypes.WatchStatusInProgress},
		{ID: "3", Title: "the only candidate", Status: dbtypes.WatchStatusBacklog},
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		got, ok := PickRandomBacklog(items, rng)
		if !ok {
			t.Fatalf("PickRandomBacklog found no candidate")
		}
		if got.ID != "3" {
			t.Fatalf("PickRandomBacklog chose %q, want the only backlog item", got.ID)
		}
	}
}

func TestPickRandomBacklogEmptyBacklog(t *testing.T) {
	items := []*dbtypes.WatchItem{
		{ID: "1", Status: dbtypes.WatchStatusDone},
	}
	rng := rand.New(rand.NewSource(1))
	if _, ok := PickRandomBacklog(items, rng); ok {
		t.Fatalf("PickRandomBacklog reported a candidate from an empty backlog")
	}
}

func TestPickRandomBacklogEventuallyCoversAllCandidates(t *testing.T) {
	items := []*dbtypes.WatchItem{
		{ID: "1", Status: dbtypes.WatchStatusBacklog},
		{ID: "2", Status: dbtypes.WatchStatusBacklog},
		{ID: "3", Status: dbtypes.WatchStatusBacklog},
	}

	rng := rand.New(rand.NewSource(42))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		got, ok := PickRandomBacklog(items, rng)
		if !ok {
			t.Fatalf("PickRandomBacklog found no candidate")
		}
		seen[got.ID] = true
	}
	for _, id := range []string{"1", "2", "3"} {
		if !seen[id] {
			t.Errorf("Item %q was never selected across 200 draws", id)
		}
	}
}
