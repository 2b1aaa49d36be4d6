package model

import (
	"fmt"
	"time"
)

// DayFormat is the calendar-day label used for document ids, slot labels and
// day grouping.
const DayFormat = "2006-01-02"

// Booking holds the member claim on a slot. A nil Booking means the slot is
// free, so "booked iff a member name is present" holds by construction.
type Booking struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// Slot is one claimable one-hour prayer window.
type Slot struct {
	// StartsAt is the start instant of the hour window, unique within a
	// schedule.
	StartsAt time.Time `json:"dateTime"`

	// Booking is present only while the slot is claimed.
	Booking *Booking `json:"booking,omitempty"`
}

// NewSlot returns a free slot starting at the given instant.
func NewSlot(startsAt time.Time) Slot {
	return Slot{StartsAt: startsAt}
}

// IsBooked reports whether a member has claimed the slot.
func (s *Slot) IsBooked() bool {
	return s.Booking != nil
}

// BookedBy returns the member name, or "" for a free slot.
func (s *Slot) BookedBy() string {
	if s.Booking == nil {
		return ""
	}
	return s.Booking.Name
}

// DayLabel returns the calendar-day part of the slot label.
func (s *Slot) DayLabel() string {
	return s.StartsAt.Format(DayFormat)
}

// Label returns the display label, derived from the start instant:
// "2026-01-15 06h-07h".
func (s *Slot) Label() string {
	h := s.StartsAt.Hour()
	return fmt.Sprintf("%s %02dh-%02dh", s.DayLabel(), h, h+1)
}

// Claim books the slot for a member. The password is the member's own
// passcode for later release, not an access check.
func (s *Slot) Claim(name, password string) error {
	if s.IsBooked() {
		return ErrAlreadyBooked
	}
	s.Booking = &Booking{Name: name, Password: password}
	return nil
}

// Free releases the slot back to available state, clearing the booking and
// its passcode.
func (s *Slot) Free() error {
	if !s.IsBooked() {
		return ErrNotBooked
	}
	s.Booking = nil
	return nil
}

// Rename replaces the member name, leaving the passcode untouched.
func (s *Slot) Rename(name string) error {
	if !s.IsBooked() {
		return ErrNotBooked
	}
	s.Booking.Name = name
	return nil
}

// ValidateMemberName enforces the 2..50 character bounds on member names.
func ValidateMemberName(name string) error {
	if n := len([]rune(name)); n < 2 || n > 50 {
		return fmt.Errorf("%w: must be 2-50 characters", ErrInvalidName)
	}
	return nil
}
