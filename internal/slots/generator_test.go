package slots

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSingleDay(t *testing.T) {
	start := day(2026, 1, 15)

	slots := Generate(start, start, 6, 18)

	if len(slots) != 12 {
		t.Fatalf("expected 12 slots, got %d", len(slots))
	}
	if !slots[0].StartsAt.Equal(start.Add(6 * time.Hour)) {
		t.Errorf("first slot at %v, want 06:00", slots[0].StartsAt)
	}
	if !slots[11].StartsAt.Equal(start.Add(17 * time.Hour)) {
		t.Errorf("last slot at %v, want 17:00", slots[11].StartsAt)
	}
	for i := 1; i < len(slots); i++ {
		if got := slots[i].StartsAt.Sub(slots[i-1].StartsAt); got != time.Hour {
			t.Errorf("gap between slot %d and %d: %v, want 1h", i-1, i, got)
		}
	}
	for _, s := range slots {
		if s.IsBooked() {
			t.Errorf("slot %v generated booked", s.StartsAt)
		}
	}
}

func TestGenerateMultiDayRollover(t *testing.T) {
	start := day(2026, 3, 10)
	end := day(2026, 3, 12)

	slots := Generate(start, end, 8, 10)

	// First day [8,10), middle day [0,24), last day [0,10).
	if len(slots) != 36 {
		t.Fatalf("expected 36 slots, got %d", len(slots))
	}

	perDay := map[string]int{}
	for i, s := range slots {
		perDay[s.DayLabel()]++
		if i > 0 && !slots[i-1].StartsAt.Before(s.StartsAt) {
			t.Errorf("slots not strictly ascending at index %d", i)
		}
	}
	want := map[string]int{
		"2026-03-10": 2,
		"2026-03-11": 24,
		"2026-03-12": 10,
	}
	for label, count := range want {
		if perDay[label] != count {
			t.Errorf("day %s: %d slots, want %d", label, perDay[label], count)
		}
	}

	if !slots[0].StartsAt.Equal(start.Add(8 * time.Hour)) {
		t.Errorf("first slot at %v, want day one 08:00", slots[0].StartsAt)
	}
	if !slots[35].StartsAt.Equal(end.Add(9 * time.Hour)) {
		t.Errorf("last slot at %v, want last day 09:00", slots[35].StartsAt)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	start := day(2026, 5, 1)
	end := day(2026, 5, 3)

	a := Generate(start, end, 7, 19)
	b := Generate(start, end, 7, 19)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].StartsAt.Equal(b[i].StartsAt) || a[i].Label() != b[i].Label() {
			t.Errorf("slot %d differs between runs", i)
		}
	}
}

func TestGenerateEmptyRanges(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		startHour int
		endHour   int
	}{
		{"start hour equals end hour", day(2026, 1, 15), day(2026, 1, 15), 10, 10},
		{"start hour after end hour", day(2026, 1, 15), day(2026, 1, 15), 18, 6},
		{"end date before start date", day(2026, 1, 16), day(2026, 1, 15), 6, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.start, tt.end, tt.startHour, tt.endHour); len(got) != 0 {
				t.Errorf("expected no slots, got %d", len(got))
			}
		})
	}
}

func TestSlotLabels(t *testing.T) {
	slots := Generate(day(2026, 1, 15), day(2026, 1, 15), 6, 8)

	want := []string{"2026-01-15 06h-07h", "2026-01-15 07h-08h"}
	for i, s := range slots {
		if s.Label() != want[i] {
			t.Errorf("label %d: %q, want %q", i, s.Label(), want[i])
		}
	}
}

func TestValidHour(t *testing.T) {
	tests := []struct {
		hour int
		want bool
	}{
		{0, true},
		{6, true},
		{24, true},
		{-1, false},
		{25, false},
	}

	for _, tt := range tests {
		if got := ValidHour(tt.hour); got != tt.want {
			t.Errorf("ValidHour(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}
