package domain

import "time"

// Identity is the authenticated caller as supplied by the host platform.
// The engine only ever compares it, never inspects it.
type Identity string

type StaySlot struct {
	ID           int64
	Host         Identity
	CheckIn      time.Time
	CheckOut     time.Time
	CancelBefore time.Time
	PriceCents   int64
	Active       bool
	Booked       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Open reports whether the slot can still accept a booking.
func (s *StaySlot) Open() bool {
	return s.Active && !s.Booked
}
