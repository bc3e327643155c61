// Package ramadan implements the daily worship tracker: lazily created
// per-day checklists, the cross-day reading-debt accumulator, and the
// period ledger with its derived totals.
package ramadan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ourstory/dbtypes"
	"ourstory/identity"
	"ourstory/livemirror"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/iterator"
)

// DefaultGoalPages is the daily Quran reading goal.
const DefaultGoalPages = 40

// DefaultWindowDays is the length of the tracked window.
const DefaultWindowDays = 30

var (
	ErrOutsideWindow    = errors.New("date is outside the tracked window")
	ErrNotOwner         = errors.New("tracker day belongs to the other member")
	ErrNoOpenPeriod     = errors.New("no open period entry to close")
	ErrPeriodSingleUser = errors.New("period tracking applies to one member only")
)

// Window is the fixed span of tracked dates, starting at Epoch.
type Window struct {
	Epoch time.Time
	Days  int
}

// Contains reports whether date falls inside the window.
func (w Window) Contains(date time.Time) bool {
	d := daysBetween(w.Epoch, date)
	return d >= 0 && d < w.Days
}

// DayNumber returns the 1-based day number of date within the window, or
// 0 if outside.
func (w Window) DayNumber(date time.Time) int {
	if !w.Contains(date) {
		return 0
	}
	return daysBetween(w.Epoch, date) + 1
}

func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

// InclusiveDays counts the days from start through end, both included.
// Closing a period opened on day 5 by toggling off on day 8 spans 4 days.
func InclusiveDays(start, end time.Time) int64 {
	return int64(daysBetween(start, end)) + 1
}

// DayID is the document id for one (member, date) checklist.  Making the
// id structural is what caps the collection at one document per pair.
func DayID(member identity.Member, date time.Time) string {
	return fmt.Sprintf("%s-%s", member, date.Format("2006-01-02"))
}

// PagesRead is the reading credited to one day: the five per-prayer
// counts, or the standalone period count while onPeriod.
func PagesRead(d *dbtypes.RamadanDay) int64 {
	if d.OnPeriod {
		return d.PeriodQuranPages
	}
	return d.FajrPages + d.DhuhrPages + d.AsrPages + d.MaghribPages + d.IshaPages
}

// Debt sums the reading shortfall over the given days: for each day,
// max(0, goal - pagesRead).
func Debt(days []*dbtypes.RamadanDay, goal int64) int64 {
	var debt int64
	for _, d := range days {
		if deficit := goal - PagesRead(d); deficit > 0 {
			debt += deficit
		}
	}
	return debt
}

// gatedFields are read-only while onPeriod.
var gatedFields = map[string]bool{
	"fajr": true, "dhuhr": true, "asr": true, "maghrib": true, "isha": true,
	"fajrPages": true, "dhuhrPages": true, "asrPages": true, "maghribPages": true, "ishaPages": true,
	"fasting": true, "nightPrayer": true,
}

// FilterGated drops the fields that are read-only while onPeriod.  A
// write attempt against a gated field is a no-op, not an error.
func FilterGated(partial map[string]any, onPeriod bool) map[string]any {
	if !onPeriod {
		return partial
	}
	out := make(map[string]any, len(partial))
	for k, v := range partial {
		if gatedFields[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// TotalMissedDays sums the closed spans in a period ledger.
func TotalMissedDays(entries []*dbtypes.PeriodHistoryEntry) int64 {
	var total int64
	for _, e := range entries {
		if e.EndDate != nil {
			total += e.MissedDays
		}
	}
	return total
}

// Tracker owns the RamadanDays and PeriodHistory collections.
type Tracker struct {
	firestoreClient *firestore.Client
	window          Window
	goal            int64

	// periodMember is the one member the period ledger applies to.
	periodMember identity.Member

	// ensure collapses concurrent lazy creations of the same day.
	ensure singleflight.Group
}

func NewTracker(firestoreClient *firestore.Client, window Window, goal int64, periodMember identity.Member) *Tracker {
	return &Tracker{
		firestoreClient: firestoreClient,
		window:          window,
		goal:            goal,
		periodMember:    periodMember,
	}
}

func (t *Tracker) Window() Window                { return t.window }
func (t *Tracker) Goal() int64                   { return t.goal }
func (t *Tracker) PeriodMember() identity.Member { return t.periodMember }

// EnsureDay returns the checklist for (member, date), creating an empty
// one if this is the first view.  Creation is idempotent: the structural
// document id plus the singleflight latch mean two rapid concurrent
// views create exactly one document.
func (t *Tracker) EnsureDay(ctx context.Context, member identity.Member, date time.Time) (*dbtypes.RamadanDay, error) {
	if !t.window.Contains(date) {
		return nil, ErrOutsideWindow
	}

	id := DayID(member, date)
	v, err, _ := t.ensure.Do(id, func() (any, error) {
		return t.loadOrCreateDay(ctx, member, date, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dbtypes.RamadanDay), nil
}

func (t *Tracker) loadOrCreateDay(ctx context.Context, member identity.Member, date time.Time, id string) (*dbtypes.RamadanDay, error) {
	ref := t.firestoreClient.Collection(dbtypes.RamadanDaysCollection).Doc(id)

	snap, err := ref.Get(ctx)
	if snap != nil && snap.Exists() {
		day := &dbtypes.RamadanDay{}
		if err := snap.DataTo(day); err != nil {
			return nil, fmt.Errorf("while unmarshaling tracker day %s: %w", id, err)
		}
		return day, nil
	}
	if err != nil && (snap == nil || snap.Exists()) {
		return nil, fmt.Errorf("while retrieving tracker day %s: %w", id, err)
	}

	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	day := &dbtypes.RamadanDay{
		ID:        id,
		Member:    member.String(),
		Date:      dateOnly,
		CreatedAt: time.Now(),
	}
	if _, err := ref.Create(ctx, day); err != nil {
		// A concurrent creator from another process can still win the
		// race; their document is identical, so read it back.
		slog.InfoContext(ctx, "Tracker day already created concurrently", slog.String("id", id), slog.Any("err", err))
		snap, getErr := ref.Get(ctx)
		if getErr != nil {
			return nil, fmt.Errorf("while creating tracker day %s: %w", id, err)
		}
		existing := &dbtypes.RamadanDay{}
		if err := snap.DataTo(existing); err != nil {
			return nil, fmt.Errorf("while unmarshaling tracker day %s: %w", id, err)
		}
		return existing, nil
	}

	return day, nil
}

// Days lists a member's checklists within the window, oldest first.
func (t *Tracker) Days(ctx context.Context, member identity.Member) ([]*dbtypes.RamadanDay, error) {
	var out []*dbtypes.RamadanDay
	it := t.firestoreClient.Collection(dbtypes.RamadanDaysCollection).
		Where("member", "==", member.String()).
		OrderBy("date", firestore.Asc).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating tracker days: %w", err)
		}
		day := &dbtypes.RamadanDay{}
		if err := snap.DataTo(day); err != nil {
			return nil, fmt.Errorf("while unmarshaling tracker day %s: %w", snap.Ref.ID, err)
		}
		if t.window.Contains(day.Date) {
			out = append(out, day)
		}
	}
	return out, nil
}

// UpdateDay applies a partial update to one checklist.  Only the owner
// may write, any in-window date is editable (not just today), and fields
// gated by an active period are silently dropped.
func (t *Tracker) UpdateDay(ctx context.Context, member identity.Member, date time.Time, partial map[string]any) error {
	day, err := t.EnsureDay(ctx, member, date)
	if err != nil {
		return err
	}
	if day.Member != member.String() {
		return ErrNotOwner
	}

	partial = FilterGated(partial, day.OnPeriod)
	if len(partial) == 0 {
		return nil
	}

	return livemirror.Update(ctx, t.firestoreClient, dbtypes.RamadanDaysCollection, day.ID, partial)
}

// RecomputeDebt recalculates today's accumulated shortfall from every
// prior in-window day and writes it back only when the stored value is
// stale, so repeated views never loop on redundant writes.
func (t *Tracker) RecomputeDebt(ctx context.Context, member identity.Member, today time.Time) (int64, error) {
	target, err := t.EnsureDay(ctx, member, today)
	if err != nil {
		return 0, err
	}

	days, err := t.Days(ctx, member)
	if err != nil {
		return 0, err
	}

	var prior []*dbtypes.RamadanDay
	for _, d := range days {
		if daysBetween(d.Date, today) > 0 {
			prior = append(prior, d)
		}
	}

	debt := Debt(prior, t.goal)
	if debt == target.DebtPages {
		return debt, nil
	}

	if err := livemirror.Update(ctx, t.firestoreClient, dbtypes.RamadanDaysCollection, target.ID, map[string]any{
		"debtPages": debt,
	}); err != nil {
		return 0, err
	}
	return debt, nil
}

// SetPeriod toggles the onPeriod flag for one day and maintains the
// period ledger.  Turning it on force-clears fasting and night prayer and
// opens a ledger entry if none is open; turning it off closes the most
// recently opened entry with the inclusive day span.
func (t *Tracker) SetPeriod(ctx context.Context, member identity.Member, date time.Time, on bool) error {
	if member != t.periodMember {
		return ErrPeriodSingleUser
	}

	day, err := t.EnsureDay(ctx, member, date)
	if err != nil {
		return err
	}
	if day.OnPeriod == on {
		return nil
	}

	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	if on {
		open, err := t.openPeriodEntry(ctx, member)
		if err != nil {
			return err
		}
		if open == nil {
			if _, err := livemirror.Add(ctx, t.firestoreClient, dbtypes.PeriodHistoryCollection, map[string]any{
				"member":     member.String(),
				"startDate":  dateOnly,
				"endDate":    nil,
				"missedDays": int64(0),
			}); err != nil {
				return err
			}
		}

		return livemirror.Update(ctx, t.firestoreClient, dbtypes.RamadanDaysCollection, day.ID, map[string]any{
			"onPeriod":         true,
			"fasting":          false,
			"nightPrayer":      false,
			"periodQuranPages": int64(0),
			"periodStartDate":  dateOnly,
		})
	}

	open, err := t.openPeriodEntry(ctx, member)
	if err != nil {
		return err
	}
	if open == nil {
		return ErrNoOpenPeriod
	}

	if err := livemirror.Update(ctx, t.firestoreClient, dbtypes.PeriodHistoryCollection, open.ID, map[string]any{
		"endDate":    dateOnly,
		"missedDays": InclusiveDays(open.StartDate, dateOnly),
	}); err != nil {
		return err
	}

	return livemirror.Update(ctx, t.firestoreClient, dbtypes.RamadanDaysCollection, day.ID, map[string]any{
		"onPeriod":      false,
		"periodEndDate": dateOnly,
	})
}

// openPeriodEntry returns the member's open ledger entry, or nil.  The
// most recently opened one wins if the at-most-one invariant was ever
// violated by hand edits.
func (t *Tracker) openPeriodEntry(ctx context.Context, member identity.Member) (*dbtypes.PeriodHistoryEntry, error) {
	var newest *dbtypes.PeriodHistoryEntry
	it := t.firestoreClient.Collection(dbtypes.PeriodHistoryCollection).
		Where("member", "==", member.String()).
		Where("endDate", "==", nil).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating period history: %w", err)
		}
		entry := &dbtypes.PeriodHistoryEntry{}
		if err := snap.DataTo(entry); err != nil {
			return nil, fmt.Errorf("while unmarshaling period entry %s: %w", snap.Ref.ID, err)
		}
		if newest == nil || entry.StartDate.After(newest.StartDate) {
			newest = entry
		}
	}
	return newest, nil
}

// History lists a member's period ledger, newest first.
func (t *Tracker) History(ctx context.Context, member identity.Member) ([]*dbtypes.PeriodHistoryEntry, error) {
	var out []*dbtypes.PeriodHistoryEntry
	it := t.firestoreClient.Collection(dbtypes.PeriodHistoryCollection).
		Where("member", "==", member.String()).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating period history: %w", err)
		}
		entry := &dbtypes.PeriodHistoryEntry{}
		if err := snap.DataTo(entry); err != nil {
			return nil, fmt.Errorf("while unmarshaling period entry %s: %w", snap.Ref.ID, err)
		}
		out = append(out, entry)
	}
	return out, nil
}
