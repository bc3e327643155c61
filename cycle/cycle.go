// Package cycle projects the wall-clock date onto a repeating 28-day
// cycle split into four phases.  It is a pure calendar computation; no
// state is read or written anywhere.
package cycle

import (
	"fmt"
	"time"
)

// Days is the length of the repeating cycle.
const Days = 28

// Phase is one of the four contiguous segments of the cycle.
type Phase int

const (
	Menstrual Phase = iota
	Follicular
	Ovulation
	Luteal
)

func (p Phase) String() string {
	switch p {
	case Menstrual:
		return "Menstrual"
	case Follicular:
		return "Follicular"
	case Ovulation:
		return "Ovulation"
	case Luteal:
		return "Luteal"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Range is the inclusive day span a phase occupies within the cycle.
type Range struct {
	Phase    Phase
	FirstDay int
	LastDay  int
}

// Ranges partitions days 1..28.
var Ranges = []Range{
	{Menstrual, 1, 5},
	{Follicular, 6, 13},
	{Ovulation, 14, 16},
	{Luteal, 17, 28},
}

// PhaseForDay maps a cycle day (1..28) to its phase.
func PhaseForDay(day int) (Phase, error) {
	for _, r := range Ranges {
		if day >= r.FirstDay && day <= r.LastDay {
			return r.Phase, nil
		}
	}
	return 0, fmt.Errorf("day %d is outside the %d-day cycle", day, Days)
}

// CurrentCycleDay returns the cycle day (1..28) for now, given the
// configured epoch.  The epoch itself is day 1, and the cycle wraps every
// 28 days.  Dates before the epoch still map into 1..28.
func CurrentCycleDay(now, epoch time.Time) int {
	d := daysBetween(epoch, now)
	return ((d%Days)+Days)%Days + 1
}

// daysBetween counts whole calendar days from a to b, ignoring the time
// of day on either end.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}
