package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked         BookingStatus = "BOOKED"
	BookingStatusGuestCancelled BookingStatus = "GUEST_CANCELLED"
	BookingStatusHostCancelled  BookingStatus = "HOST_CANCELLED"
	BookingStatusRefundedNoShow BookingStatus = "REFUNDED_NO_SHOW"
	BookingStatusCompletedPaid  BookingStatus = "COMPLETED_PAID"
)

// Terminal reports whether the status admits no further transition.
func (s BookingStatus) Terminal() bool {
	return s != BookingStatusBooked
}

type Booking struct {
	ID          int64
	SlotID      int64
	Host        Identity
	Guest       Identity
	AmountCents int64
	CheckedIn   bool
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
