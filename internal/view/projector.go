// Package view derives presentation-ready projections from a schedule value.
// Everything here is pure: re-derivable at any time from a schedule plus
// filter bounds, with no state of its own.
package view

import (
	"sort"
	"time"

	"vigil/internal/model"
)

// BookedSlots returns all claimed slots sorted ascending by start instant.
func BookedSlots(s *model.Schedule) []model.Slot {
	var booked []model.Slot
	for i := range s.Slots {
		if s.Slots[i].IsBooked() {
			booked = append(booked, s.Slots[i])
		}
	}
	sort.Slice(booked, func(i, j int) bool {
		return booked[i].StartsAt.Before(booked[j].StartsAt)
	})
	return booked
}

// FilterByRange returns slots whose calendar day falls within [from, to]
// inclusive. A nil bound is unconstrained on that side.
func FilterByRange(s *model.Schedule, from, to *time.Time) []model.Slot {
	var out []model.Slot
	for i := range s.Slots {
		day := model.Day(s.Slots[i].StartsAt)
		if from != nil && day.Before(model.Day(*from)) {
			continue
		}
		if to != nil && day.After(model.Day(*to)) {
			continue
		}
		out = append(out, s.Slots[i])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

// DayGroup is one calendar day's bucket of slots, in ascending slot order.
type DayGroup struct {
	Day   time.Time
	Label string
	Slots []model.Slot
}

// GroupByDay buckets slots by calendar day, ascending across days and within
// each day.
func GroupByDay(slots []model.Slot) []DayGroup {
	ordered := append([]model.Slot(nil), slots...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartsAt.Before(ordered[j].StartsAt)
	})

	var groups []DayGroup
	for _, slot := range ordered {
		day := model.Day(slot.StartsAt)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Slots = append(groups[n-1].Slots, slot)
			continue
		}
		groups = append(groups, DayGroup{
			Day:   day,
			Label: slot.DayLabel(),
			Slots: []model.Slot{slot},
		})
	}
	return groups
}
