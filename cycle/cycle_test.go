package cycle

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, time.March, 3, 0, 0, 0, 0, time.Local)

func TestCurrentCycleDayAtEpoch(t *testing.T) {
	if got := CurrentCycleDay(epoch, epoch); got != 1 {
		t.Errorf("CurrentCycleDay at epoch = %d, want 1", got)
	}
}

func TestCurrentCycleDayWraps(t *testing.T) {
	tests := []struct {
		offsetDays int
		want       int
	}{
		{0, 1},
		{1, 2},
		{27, 28},
		{28, 1},
		{29, 2},
		{56, 1},
		{-1, 28},
		{-28, 1},
	}
	for _, tc := range tests {
		now := epoch.AddDate(0, 0, tc.offsetDays)
		if got := CurrentCycleDay(now, epoch); got != tc.want {
			t.Errorf("CurrentCycleDay(epoch%+d) = %d, want %d", tc.offsetDays, got, tc.want)
		}
	}
}

func TestCurrentCycleDayIgnoresTimeOfDay(t *testing.T) {
	lateInDay := epoch.Add(23*time.Hour + 59*time.Minute)
	if got := CurrentCycleDay(lateInDay, epoch); got != 1 {
		t.Errorf("CurrentCycleDay late on epoch day = %d, want 1", got)
	}
}

func TestPhaseForDay(t *testing.T) {
	tests := []struct {
		day  int
		want Phase
	}{
		{1, Menstrual},
		{5, Menstrual},
		{6, Follicular},
		{13, Follicular},
		{14, Ovulation},
		{16, Ovulation},
		{17, Luteal},
		{28, Luteal},
	}
	for _, tc := range tests {
		got, err := PhaseForDay(tc.day)
		if err != nil {
			t.Fatalf("Unexpected error for day %d: %v", tc.day, err)
		}
		if got != tc.want {
			t.Errorf("PhaseForDay(%d) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestPhaseForDayRejectsOutOfRange(t *testing.T) {
	for _, day := range []int{0, -3, 29, 100} {
		if _, err := PhaseForDay(day); err == nil {
			t.Errorf("PhaseForDay(%d) succeeded, want error", day)
		}
	}
}

func TestRangesPartitionTheCycle(t *testing.T) {
	covered := map[int]Phase{}
	for _, r := range Ranges {
		for d := r.FirstDay; d <= r.LastDay; d++ {
			if prev, dup := covered[d]; dup {
				t.Fatalf("Day %d covered by both %v and %v", d, prev, r.Phase)
			}
			covered[d] = r.Phase
		}
	}
	for d := 1; d <= Days; d++ {
		if _, ok := covered[d]; !ok {
			t.Errorf("Day %d not covered by any phase", d)
		}
	}
}
