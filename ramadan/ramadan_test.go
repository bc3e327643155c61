package ramadan

import (
	"testing"
	"time"

	"ourstory/dbtypes"
	"ourstory/identity"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

func day(offset int, pages int64, onPeriod bool, periodPages int64) *dbtypes.RamadanDay {
	return &dbtypes.RamadanDay{
		Date:             epoch.AddDate(0, 0, offset),
		FajrPages:        pages,
		OnPeriod:         onPeriod,
		PeriodQuranPages: periodPages,
	}
}

func TestPagesRead(t *testing.T) {
	d := &dbtypes.RamadanDay{
		FajrPages:    5,
		DhuhrPages:   10,
		AsrPages:     5,
		MaghribPages: 10,
		IshaPages:    10,
	}
	if got := PagesRead(d); got != 40 {
		t.Errorf("PagesRead = %d, want 40", got)
	}

	d.OnPeriod = true
	d.PeriodQuranPages = 12
	if got := PagesRead(d); got != 12 {
		t.Errorf("PagesRead during period = %d, want 12", got)
	}
}

func TestDebtConcreteCase(t *testing.T) {
	// Days 1 and 2 read 40 and 25 pages; on day 3 the debt is 0 + 15.
	prior := []*dbtypes.RamadanDay{
		day(0, 40, false, 0),
		day(1, 25, false, 0),
	}
	if got := Debt(prior, DefaultGoalPages); got != 15 {
		t.Errorf("Debt = %d, want 15", got)
	}
}

func TestDebtUsesPeriodPagesWhenOnPeriod(t *testing.T) {
	prior := []*dbtypes.RamadanDay{
		day(0, 0, true, 30), // deficit 10 against the period count
		day(1, 35, false, 0),
	}
	if got := Debt(prior, DefaultGoalPages); got != 15 {
		t.Errorf("Debt = %d, want 15", got)
	}
}

func TestDebtNeverCreditsSurplus(t *testing.T) {
	prior := []*dbtypes.RamadanDay{
		day(0, 100, false, 0), // surplus must not offset...
		day(1, 30, false, 0),  // ...this deficit of 10
	}
	if got := Debt(prior, DefaultGoalPages); got != 10 {
		t.Errorf("Debt = %d, want 10", got)
	}
}

func TestInclusiveDays(t *testing.T) {
	start := epoch.AddDate(0, 0, 4) // day 5
	end := epoch.AddDate(0, 0, 7)   // day 8
	if got := InclusiveDays(start, end); got != 4 {
		t.Errorf("InclusiveDays = %d, want 4", got)
	}

	if got := InclusiveDays(start, start); got != 1 {
		t.Errorf("InclusiveDays same day = %d, want 1", got)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Epoch: epoch, Days: DefaultWindowDays}

	if !w.Contains(epoch) {
		t.Errorf("Window should contain its epoch")
	}
	if !w.Contains(epoch.AddDate(0, 0, 29)) {
		t.Errorf("Window should contain its last day")
	}
	if w.Contains(epoch.AddDate(0, 0, 30)) {
		t.Errorf("Window should not contain day 31")
	}
	if w.Contains(epoch.AddDate(0, 0, -1)) {
		t.Errorf("Window should not contain the day before the epoch")
	}
}

func TestWindowDayNumber(t *testing.T) {
	w := Window{Epoch: epoch, Days: DefaultWindowDays}
	if got := w.DayNumber(epoch); got != 1 {
		t.Errorf("DayNumber(epoch) = %d, want 1", got)
	}
	if got := w.DayNumber(epoch.AddDate(0, 0, 29)); got != 30 {
		t.Errorf("DayNumber(last day) = %d, want 30", got)
	}
	if got := w.DayNumber(epoch.AddDate(0, 0, 31)); got != 0 {
		t.Errorf("DayNumber outside window = %d, want 0", got)
	}
}

func TestDayID(t *testing.T) {
	date := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)
	if got := DayID(identity.MemberA, date); got != "a-2025-03-07" {
		t.Errorf("DayID = %q, want %q", got, "a-2025-03-07")
	}
}

func TestFilterGated(t *testing.T) {
	partial := map[string]any{
		"fajr":               true,
		"fajrPages":          int64(10),
		"fasting":            true,
		"nightPrayer":        true,
		"periodQuranPages":   int64(5),
		"eveningRemembrance": true,
	}

	got := FilterGated(partial, true)
	want := map[string]any{
		"periodQuranPages":   int64(5),
		"eveningRemembrance": true,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad gated filter; diff (-got +want)\n%s", diff)
	}

	// Off period, everything passes through.
	if diff := cmp.Diff(FilterGated(partial, false), partial); diff != "" {
		t.Errorf("Filter modified an off-period update; diff (-got +want)\n%s", diff)
	}
}

func TestTotalMissedDays(t *testing.T) {
	end := epoch.AddDate(0, 0, 7)
	entries := []*dbtypes.PeriodHistoryEntry{
		{StartDate: epoch, EndDate: &end, MissedDays: 8},
		{StartDate: epoch.AddDate(0, 0, 20), EndDate: nil, MissedDays: 0}, // open, not counted
		{StartDate: epoch.AddDate(0, 0, 10), EndDate: &end, MissedDays: 3},
	}
	if got := TotalMissedDays(entries); got != 11 {
		t.Errorf("TotalMissedDays = %d, want 11", got)
	}
}
