// Package slots generates the hourly slot sequence for a schedule's date
// range.
package slots

import (
	"time"

	"vigil/internal/model"
)

// Hour-of-day bounds accepted by Generate. The end bound is exclusive on the
// slot's start hour, so 24 means "through the end of the day".
const (
	MinHour = 0
	MaxHour = 24
)

// ValidHour reports whether h is a usable hour bound inside [0,24].
func ValidHour(h int) bool {
	return h >= MinHour && h <= MaxHour
}

// Generate produces the ordered slot sequence covering the inclusive
// calendar-day range [startDate, endDate]. The first day runs from startHour,
// the last day up to endHour; days in between run the full 24 hours. The
// result is deterministic and strictly ascending; a zero-slot range returns
// an empty sequence and the caller must reject creation.
func Generate(startDate, endDate time.Time, startHour, endHour int) []model.Slot {
	first := model.Day(startDate)
	last := model.Day(endDate)
	if last.Before(first) {
		return nil
	}

	var out []model.Slot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dayStart := MinHour
		dayEnd := MaxHour
		if day.Equal(first) {
			dayStart = startHour
		}
		if day.Equal(last) {
			dayEnd = endHour
		}
		for h := dayStart; h < dayEnd; h++ {
			at := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
			out = append(out, model.NewSlot(at))
		}
	}
	return out
}
