package dbtypes

import (
	"testing"
	"time"
)

func TestWishCanRevealAtLocalMidnight(t *testing.T) {
	unlock := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local)
	w := &Wish{Text: "surprise", UnlockDate: unlock}

	justBefore := time.Date(2025, time.June, 9, 23, 59, 59, 0, time.Local)
	if w.CanReveal(justBefore) {
		t.Errorf("Wish revealable one second before midnight of its unlock date")
	}

	atMidnight := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local)
	if !w.CanReveal(atMidnight) {
		t.Errorf("Wish not revealable exactly at midnight of its unlock date")
	}

	later := atMidnight.AddDate(0, 0, 3)
	if !w.CanReveal(later) {
		t.Errorf("Wish not revealable after its unlock date")
	}
}

func TestWishCanRevealIgnoresUnlockTimeOfDay(t *testing.T) {
	// Unlock dates entered through a datetime widget may carry a time of
	// day; the gate opens at midnight regardless.
	unlock := time.Date(2025, time.June, 10, 17, 30, 0, 0, time.Local)
	w := &Wish{Text: "surprise", UnlockDate: unlock}

	morning := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.Local)
	if !w.CanReveal(morning) {
		t.Errorf("Wish not revealable on the morning of its unlock date")
	}
}

func TestDateIdeaValidate(t *testing.T) {
	good := &DateIdea{Title: "Picnic", Status: DateStatusIdea}
	if err := good.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := (&DateIdea{Status: DateStatusIdea}).Validate(); err != ErrMissingTitle {
		t.Errorf("Missing title: got %v, want %v", err, ErrMissingTitle)
	}
	if err := (&DateIdea{Title: "x", Status: "someday"}).Validate(); err != ErrBadStatus {
		t.Errorf("Bad status: got %v, want %v", err, ErrBadStatus)
	}
}

func TestWatchItemValidate(t *testing.T) {
	good := &WatchItem{Title: "Spirited Away", Kind: WatchKindMovie, Status: WatchStatusBacklog}
	if err := good.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bad := &WatchItem{Title: "x", Kind: "podcast", Status: WatchStatusBacklog}
	if err := bad.Validate(); err != ErrBadKind {
		t.Errorf("Bad kind: got %v, want %v", err, ErrBadKind)
	}

	bad = &WatchItem{Title: "x", Kind: WatchKindGame, Status: WatchStatusDone, Rating: 11}
	if err := bad.Validate(); err != ErrBadRating {
		t.Errorf("Bad rating: got %v, want %v", err, ErrBadRating)
	}
}

func TestNotificationValidate(t *testing.T) {
	good := &Notification{To: "a", From: "b", Title: "hi", Kind: NotifyGeneral}
	if err := good.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bad := &Notification{To: "a", From: "b", Title: "hi", Kind: "carrier-pigeon"}
	if err := bad.Validate(); err != ErrBadKind {
		t.Errorf("Bad kind: got %v, want %v", err, ErrBadKind)
	}

	bad = &Notification{Title: "hi", Kind: NotifyGeneral}
	if err := bad.Validate(); err != ErrMissingAddress {
		t.Errorf("Missing address: got %v, want %v", err, ErrMissingAddress)
	}
}
