package model

import "errors"

// Domain errors returned by schedule operations. All of them are recoverable
// at the call site; handlers map them to HTTP status codes.
var (
	// ErrInvalidRange means the requested date or hour range is inverted.
	ErrInvalidRange = errors.New("invalid schedule range")

	// ErrEmptyRange means slot generation produced no slots for the range.
	ErrEmptyRange = errors.New("schedule range yields no slots")

	// ErrSlotNotFound means no slot matches the requested start instant.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAlreadyBooked means the slot is already claimed by a member.
	ErrAlreadyBooked = errors.New("slot already booked")

	// ErrNotBooked means the slot is free and cannot be released or edited.
	ErrNotBooked = errors.New("slot is not booked")

	// ErrWrongPassword means the supplied passcode does not match.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNotAllowed means members are not permitted to release their own
	// bookings (admin toggle is off).
	ErrNotAllowed = errors.New("operation not allowed")

	// ErrInvalidName means the member name fails length validation.
	ErrInvalidName = errors.New("invalid member name")

	// ErrInvalidNumber means the destination number fails validation.
	ErrInvalidNumber = errors.New("invalid destination number")

	// ErrScheduleNotFound means no schedule exists under the given id.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrStoreUnavailable wraps any storage failure surfaced to callers.
	ErrStoreUnavailable = errors.New("store unavailable")
)
