// Package dbtypes holds the record types stored in each Firestore
// collection.  Every document shape the application reads or writes is
// declared here, so the read/write boundary has exactly one definition of
// what a collection contains.
package dbtypes

import (
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// Collection names.  Writes and live queries refer to these constants,
// never to string literals.
const (
	DateIdeasCollection       = "DateIdeas"
	TimelineCollection        = "TimelineItems"
	WishesCollection          = "Wishes"
	WatchItemsCollection      = "WatchItems"
	PhotosCollection          = "Photos"
	PhotoTombstonesCollection = "PhotoTombstones"
	NotificationsCollection   = "Notifications"
	DevicesCollection         = "Devices"
	RamadanDaysCollection     = "RamadanDays"
	PeriodHistoryCollection   = "PeriodHistory"
	UsersCollection           = "Users"
	SessionsCollection        = "Sessions"
)

var (
	ErrMissingTitle   = errors.New("title must not be empty")
	ErrMissingBody    = errors.New("body must not be empty")
	ErrBadStatus      = errors.New("unknown status value")
	ErrBadKind        = errors.New("unknown kind value")
	ErrBadRating      = errors.New("rating must be between 0 and 10")
	ErrMissingAddress = errors.New("notification must have a recipient and a sender")
	ErrMissingBlob    = errors.New("photo must reference a stored blob")
)

// User represents one of the two people using the application.
type User struct {
	ID           string `firestore:"id"`
	Email        string `firestore:"email"`
	PasswordHash string `firestore:"passwordHash"`

	// Member is the resolved two-party identity ("a" or "b"), assigned
	// when the account is provisioned.  See the identity package.
	Member string `firestore:"member"`
}

// Session represents a log-in session for a User.
//
// Member is copied from the user at session creation so handlers never
// re-derive identity from the email.
type Session struct {
	Cookie  string                 `firestore:"cookie"`
	User    *firestore.DocumentRef `firestore:"user"`
	Member  string                 `firestore:"member"`
	Expires time.Time              `firestore:"expires"`
}

// DateIdea is an entry in the date planner.
type DateIdea struct {
	ID          string     `firestore:"id"`
	Title       string     `firestore:"title"`
	Description string     `firestore:"description"`
	Location    string     `firestore:"location"`
	Category    string     `firestore:"category"`
	Status      string     `firestore:"status"` // idea, planned, done
	PlannedFor  time.Time  `firestore:"plannedFor"`
	CreatedBy   string     `firestore:"createdBy"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	UpdatedAt   *time.Time `firestore:"updatedAt"`
}

// Date idea statuses.
const (
	DateStatusIdea    = "idea"
	DateStatusPlanned = "planned"
	DateStatusDone    = "done"
)

func (d *DateIdea) Validate() error {
	if d.Title == "" {
		return ErrMissingTitle
	}
	switch d.Status {
	case DateStatusIdea, DateStatusPlanned, DateStatusDone:
	default:
		return ErrBadStatus
	}
	return nil
}

// TimelineItem is a journal/memory entry on the shared timeline.
type TimelineItem struct {
	ID        string     `firestore:"id"`
	Title     string     `firestore:"title"`
	Body      string     `firestore:"body"`
	Date      time.Time  `firestore:"date"`
	Mood      string     `firestore:"mood"`
	PhotoURL  string     `firestore:"photoUrl"`
	CreatedBy string     `firestore:"createdBy"`
	CreatedAt time.Time  `firestore:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt"`
}

func (t *TimelineItem) Validate() error {
	if t.Title == "" {
		return ErrMissingTitle
	}
	if t.Body == "" {
		return ErrMissingBody
	}
	return nil
}

// Wish is a sealed note in the wish jar.  It stays hidden until local
// midnight of UnlockDate.
type Wish struct {
	ID         string     `firestore:"id"`
	Text       string     `firestore:"text"`
	Author     string     `firestore:"author"`
	UnlockDate time.Time  `firestore:"unlockDate"`
	Revealed   bool       `firestore:"revealed"`
	CreatedAt  time.Time  `firestore:"createdAt"`
	UpdatedAt  *time.Time `firestore:"updatedAt"`
}

func (w *Wish) Validate() error {
	if w.Text == "" {
		return ErrMissingBody
	}
	return nil
}

// CanReveal reports whether the wish may be opened at the given moment.
// The wish unlocks at local midnight of UnlockDate.
func (w *Wish) CanReveal(now time.Time) bool {
	unlock := time.Date(w.UnlockDate.Year(), w.UnlockDate.Month(), w.UnlockDate.Day(), 0, 0, 0, 0, now.Location())
	return !now.Before(unlock)
}

// WatchItem is an entry in the shared watch/play list.
type WatchItem struct {
	ID        string     `firestore:"id"`
	Title     string     `firestore:"title"`
	Kind      string     `firestore:"kind"`   // movie, series, game
	Status    string     `firestore:"status"` // backlog, inprogress, done
	Rating    int64      `firestore:"rating"` // 0-10, meaningful once done
	CreatedBy string     `firestore:"createdBy"`
	CreatedAt time.Time  `firestore:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt"`
}

// Watch item kinds and statuses.
const (
	WatchKindMovie  = "movie"
	WatchKindSeries = "series"
	WatchKindGame   = "game"

	WatchStatusBacklog    = "backlog"
	WatchStatusInProgress = "inprogress"
	WatchStatusDone       = "done"
)

func (w *WatchItem) Validate() error {
	if w.Title == "" {
		return ErrMissingTitle
	}
	switch w.Kind {
	case WatchKindMovie, WatchKindSeries, WatchKindGame:
	default:
		return ErrBadKind
	}
	switch w.Status {
	case WatchStatusBacklog, WatchStatusInProgress, WatchStatusDone:
	default:
		return ErrBadStatus
	}
	if w.Rating < 0 || w.Rating > 10 {
		return ErrBadRating
	}
	return nil
}

// Photo is an album entry.  The blob itself lives in object storage;
// RetrievalURL and StorageKey point at it.
type Photo struct {
	ID           string     `firestore:"id"`
	Caption      string     `firestore:"caption"`
	RetrievalURL string     `firestore:"retrievalUrl"`
	StorageKey   string     `firestore:"storageKey"`
	UploadedBy   string     `firestore:"uploadedBy"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	UpdatedAt    *time.Time `firestore:"updatedAt"`
}

// Validate requires both halves of the blob reference: the URL the album
// renders and the key the delete saga resolves.
func (p *Photo) Validate() error {
	if p.RetrievalURL == "" || p.StorageKey == "" {
		return ErrMissingBlob
	}
	return nil
}

// PhotoTombstone records the bad leg of the photo delete saga: the blob
// was deleted but the document delete failed.  Left for manual cleanup.
type PhotoTombstone struct {
	ID        string    `firestore:"id"`
	PhotoID   string    `firestore:"photoId"`
	Key       string    `firestore:"key"`
	Reason    string    `firestore:"reason"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// Notification kinds.
const (
	NotifyGeneral   = "general"
	NotifyWish      = "wish"
	NotifyTimeline  = "timeline"
	NotifyDate      = "date"
	NotifyNote      = "note"
	NotifyWatchPlay = "watchplay"
)

// ValidNotifyKind reports whether k is one of the notification kinds.
func ValidNotifyKind(k string) bool {
	switch k {
	case NotifyGeneral, NotifyWish, NotifyTimeline, NotifyDate, NotifyNote, NotifyWatchPlay:
		return true
	}
	return false
}

// Notification is a message from one member to the other.  Created by the
// sender, mutated only by the recipient toggling Read.  Never deleted by
// the application.
type Notification struct {
	ID        string    `firestore:"id"`
	To        string    `firestore:"to"`
	From      string    `firestore:"from"`
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	Kind      string    `firestore:"kind"`
	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (n *Notification) Validate() error {
	if n.To == "" || n.From == "" {
		return ErrMissingAddress
	}
	if n.Title == "" {
		return ErrMissingTitle
	}
	if !ValidNotifyKind(n.Kind) {
		return ErrBadKind
	}
	return nil
}

// Device holds the push registration for one member.  Document ID is the
// member value, so there is at most one device per member.
type Device struct {
	Member    string    `firestore:"member"`
	FCMToken  string    `firestore:"fcmToken"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// RamadanDay is the per-(member, date) worship checklist.  At most one
// document exists per (member, date); the document ID is
// "{member}-{yyyy-mm-dd}" to make that structural.
type RamadanDay struct {
	ID     string    `firestore:"id"`
	Member string    `firestore:"member"`
	Date   time.Time `firestore:"date"`

	Fajr    bool `firestore:"fajr"`
	Dhuhr   bool `firestore:"dhuhr"`
	Asr     bool `firestore:"asr"`
	Maghrib bool `firestore:"maghrib"`
	Isha    bool `firestore:"isha"`

	FajrPages    int64 `firestore:"fajrPages"`
	DhuhrPages   int64 `firestore:"dhuhrPages"`
	AsrPages     int64 `firestore:"asrPages"`
	MaghribPages int64 `firestore:"maghribPages"`
	IshaPages    int64 `firestore:"ishaPages"`

	Fasting            bool `firestore:"fasting"`
	NightPrayer        bool `firestore:"nightPrayer"`
	MorningRemembrance bool `firestore:"morningRemembrance"`
	EveningRemembrance bool `firestore:"eveningRemembrance"`

	// DebtPages is derived: the accumulated reading shortfall over all
	// prior in-window days.  Recomputed on view, written only on change.
	DebtPages int64 `firestore:"debtPages"`

	OnPeriod         bool       `firestore:"onPeriod"`
	PeriodQuranPages int64      `firestore:"periodQuranPages"`
	PeriodStartDate  *time.Time `firestore:"periodStartDate"`
	PeriodEndDate    *time.Time `firestore:"periodEndDate"`

	CreatedAt time.Time  `firestore:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt"`
}

// PeriodHistoryEntry is one span in the period ledger.  EndDate nil means
// the span is still open; at most one open entry exists per member.
type PeriodHistoryEntry struct {
	ID         string     `firestore:"id"`
	Member     string     `firestore:"member"`
	StartDate  time.Time  `firestore:"startDate"`
	EndDate    *time.Time `firestore:"endDate"`
	MissedDays int64      `firestore:"missedDays"`
	CreatedAt  time.Time  `firestore:"createdAt"`
	UpdatedAt  *time.Time `firestore:"updatedAt"`
}
