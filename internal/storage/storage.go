package storage

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("time slot already taken")
	ErrTokenTaken      = errors.New("verification token already in use")
	// ErrStaleBooking is returned by conditional writes when the row exists
	// but no longer matches the state the caller read.
	ErrStaleBooking = errors.New("booking no longer in the expected state")
)
