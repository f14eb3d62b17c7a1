package domain

import "errors"

// Caller-facing rejections. Every operation either commits in full or fails
// with one of these and leaves no observable state change.
var (
	// authorization
	ErrNotHost  = errors.New("caller is not the host")
	ErrNotGuest = errors.New("caller is not the guest")
	ErrNotParty = errors.New("caller is neither guest nor host")
	ErrNotAdmin = errors.New("caller is not the administrator")

	// lifecycle
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotInactive    = errors.New("slot is inactive")
	ErrAlreadyBooked   = errors.New("slot is already booked")
	ErrNotBooked       = errors.New("booking is not in booked status")
	ErrAlreadySettled  = errors.New("booking is already settled")

	// validation
	ErrInvalidTimes    = errors.New("invalid slot times")
	ErrInvalidValue    = errors.New("invalid value")
	ErrParamOutOfRange = errors.New("parameter out of range")

	// timing
	ErrTooEarly        = errors.New("too early")
	ErrTooLateToCancel = errors.New("too late to cancel")

	// concurrency
	ErrReentrancy = errors.New("reentrant call rejected")
)
