package model

import "time"

// Schedule is a date range's full set of hourly slots plus metadata. The id
// doubles as the document key in the store.
type Schedule struct {
	ID    string `json:"id"`
	Slots []Slot `json:"slots"`

	// StartDate and EndDate are the requested coverage range, inclusive
	// calendar dates (midnight-normalized).
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	// StartHour applies to the first day, EndHour to the last. Days in
	// between run the full 24 hours.
	StartHour int `json:"startTime"`
	EndHour   int `json:"endTime"`

	// SummarySent guards the one-shot automatic completion dispatch.
	SummarySent bool `json:"whatsAppSent"`
}

// ScheduleID derives the stable document id from the creation start date.
func ScheduleID(startDate time.Time) string {
	return startDate.Format(DayFormat)
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FindSlot returns the slot starting at the given instant, or nil.
func (s *Schedule) FindSlot(startsAt time.Time) *Slot {
	for i := range s.Slots {
		if s.Slots[i].StartsAt.Equal(startsAt) {
			return &s.Slots[i]
		}
	}
	return nil
}

// AllSlotsBooked reports whether the schedule is fully claimed. An empty
// schedule is never considered complete.
func (s *Schedule) AllSlotsBooked() bool {
	if len(s.Slots) == 0 {
		return false
	}
	for i := range s.Slots {
		if !s.Slots[i].IsBooked() {
			return false
		}
	}
	return true
}

// Contains reports whether the given day falls inside [StartDate, EndDate].
// Comparison is by calendar-day label, so the day's location does not matter.
func (s *Schedule) Contains(day time.Time) bool {
	d := day.Format(DayFormat)
	return d >= s.StartDate.Format(DayFormat) && d <= s.EndDate.Format(DayFormat)
}

// EndsBefore reports whether the schedule is fully in the past relative to
// the given calendar day.
func (s *Schedule) EndsBefore(day time.Time) bool {
	return s.EndDate.Format(DayFormat) < day.Format(DayFormat)
}

// SpanLabel renders the schedule's date span for summaries and exports.
func (s *Schedule) SpanLabel() string {
	start := s.StartDate.Format(DayFormat)
	end := s.EndDate.Format(DayFormat)
	if start == end {
		return start
	}
	return start + " a " + end
}
