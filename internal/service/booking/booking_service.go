package booking

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/kafka"
	"github.com/Domenick1991/stayescrow/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, caller domain.Identity, slotID int64, paidCents int64) (*domain.Booking, error)
	CancelByGuest(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error)
	CancelByHost(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error)
	ConfirmCheckIn(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error)
	RefundNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ReleasePayout(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error)
	FinalizePayoutIfIdle(ctx context.Context, bookingID int64) (*domain.Booking, error)
	GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error)
	SettleDue(ctx context.Context) ([]domain.Booking, error)
}

// Clock is the wall-clock collaborator. Every timing precondition reads it
// exactly once per operation.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Custodian holds and releases the escrowed value.
type Custodian interface {
	Hold(amountCents int64) error
	Release(ctx context.Context, recipient domain.Identity, amountCents int64) error
}

// Params supplies the current settlement windows.
type Params interface {
	Windows(ctx context.Context) (noShow, grace time.Duration, err error)
}

type Cache interface {
	AcquireSettleLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error)
	ReleaseSettleLock(ctx context.Context, bookingID int64) error
	InvalidateOpenSlots(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	slots              repository.SlotRepository
	params             Params
	custody            Custodian
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	settleLockTTL      time.Duration
	clock              Clock

	mu       sync.Mutex
	inflight map[string]struct{}
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(clock Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = clock
	}
}

func WithSettleLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.settleLockTTL = ttl
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	params Params,
	custody Custodian,
	cache Cache,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		slots:         slots,
		params:        params,
		custody:       custody,
		cache:         cache,
		producer:      producer,
		eventsTopic:   eventsTopic,
		settleLockTTL: 30 * time.Second,
		clock:         realClock{},
		inflight:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// enter rejects a nested or concurrent invocation touching the same entity.
// Settlement correctness does not depend on it (the terminal-status guard in
// the repository already admits one winner); it turns a reentrant call into a
// clean error instead of a blocked transaction.
func (s *BookingService) enter(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[key]; busy {
		return domain.ErrReentrancy
	}
	s.inflight[key] = struct{}{}
	return nil
}

func (s *BookingService) exit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, key)
}

func slotKey(id int64) string    { return "slot:" + strconv.FormatInt(id, 10) }
func bookingKey(id int64) string { return "booking:" + strconv.FormatInt(id, 10) }

// Book is the single entry point that moves value into escrow: exactly once
// per slot, and only for the exact slot price.
func (s *BookingService) Book(ctx context.Context, caller domain.Identity, slotID int64, paidCents int64) (*domain.Booking, error) {
	if err := s.enter(slotKey(slotID)); err != nil {
		return nil, err
	}
	defer s.exit(slotKey(slotID))

	b, err := s.bookings.Book(ctx, slotID, caller, paidCents)
	if err != nil {
		return nil, err
	}
	if err := s.custody.Hold(b.AmountCents); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateOpenSlots(ctx)
	}
	s.publish(ctx, "booked", b, b.AmountCents)
	return b, nil
}

func (s *BookingService) CancelByGuest(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	return s.settle(ctx, bookingID, domain.BookingStatusGuestCancelled, "guest_cancelled",
		func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error) {
			if caller != b.Guest {
				return "", domain.ErrNotGuest
			}
			if now.After(slot.CancelBefore) {
				return "", domain.ErrTooLateToCancel
			}
			return b.Guest, nil
		})
}

func (s *BookingService) CancelByHost(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	return s.settle(ctx, bookingID, domain.BookingStatusHostCancelled, "host_cancelled",
		func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error) {
			if caller != b.Host {
				return "", domain.ErrNotHost
			}
			// The host's window closes the instant check-in begins.
			if !now.Before(slot.CheckIn) {
				return "", domain.ErrTooLateToCancel
			}
			return b.Guest, nil
		})
}

// ConfirmCheckIn flips the orthogonal checked-in flag. Repeat calls by either
// party are accepted and re-emit the notification; the flag itself only ever
// goes false to true.
func (s *BookingService) ConfirmCheckIn(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	if err := s.enter(bookingKey(bookingID)); err != nil {
		return nil, err
	}
	defer s.exit(bookingKey(bookingID))

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusBooked {
		return nil, domain.ErrNotBooked
	}
	if caller != b.Guest && caller != b.Host {
		return nil, domain.ErrNotParty
	}
	slot, err := s.slots.GetByID(ctx, b.SlotID)
	if err != nil {
		return nil, err
	}
	if s.clock.Now().Before(slot.CheckIn) {
		return nil, domain.ErrTooEarly
	}

	updated, err := s.bookings.SetCheckedIn(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "check_in_confirmed", updated, 0)
	return updated, nil
}

// RefundNoShow is permissionless: once the no-show window has elapsed with no
// confirmed check-in, anyone may trigger the guest's refund.
func (s *BookingService) RefundNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	noShow, _, err := s.params.Windows(ctx)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, bookingID, domain.BookingStatusRefundedNoShow, "refunded_no_show",
		func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error) {
			if b.CheckedIn {
				return "", domain.ErrAlreadySettled
			}
			if now.Before(slot.CheckIn.Add(noShow)) {
				return "", domain.ErrTooEarly
			}
			return b.Guest, nil
		})
}

func (s *BookingService) ReleasePayout(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	return s.settle(ctx, bookingID, domain.BookingStatusCompletedPaid, "payout_released",
		func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error) {
			if !b.CheckedIn {
				return "", domain.ErrTooEarly
			}
			if caller != b.Host {
				return "", domain.ErrNotHost
			}
			if now.Before(slot.CheckOut) {
				return "", domain.ErrTooEarly
			}
			return b.Host, nil
		})
}

// FinalizePayoutIfIdle is the permissionless counterpart of ReleasePayout for
// hosts that never claim: past the completion grace anyone may force it.
func (s *BookingService) FinalizePayoutIfIdle(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	_, grace, err := s.params.Windows(ctx)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, bookingID, domain.BookingStatusCompletedPaid, "payout_released",
		func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error) {
			if !b.CheckedIn {
				return "", domain.ErrTooEarly
			}
			if now.Before(slot.CheckOut.Add(grace)) {
				return "", domain.ErrTooEarly
			}
			return b.Host, nil
		})
}

func (s *BookingService) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

// SettleDue sweeps bookings past a permissionless deadline, for the worker.
// Individual failures are logged and skipped; racing sweeps lose cleanly on
// the terminal-status guard.
func (s *BookingService) SettleDue(ctx context.Context) ([]domain.Booking, error) {
	noShow, grace, err := s.params.Windows(ctx)
	if err != nil {
		return nil, err
	}
	due, err := s.bookings.ListDue(ctx, s.clock.Now(), noShow, grace)
	if err != nil {
		return nil, err
	}

	var settled []domain.Booking
	for _, b := range due {
		var done *domain.Booking
		var serr error
		if b.CheckedIn {
			done, serr = s.FinalizePayoutIfIdle(ctx, b.ID)
		} else {
			done, serr = s.RefundNoShow(ctx, b.ID)
		}
		if serr != nil {
			log.Printf("settle booking %d: %v", b.ID, serr)
			continue
		}
		settled = append(settled, *done)
	}
	return settled, nil
}

// precheck validates an attempted settlement against the loaded booking and
// slot and returns the funds' recipient.
type precheck func(b *domain.Booking, slot *domain.StaySlot, now time.Time) (domain.Identity, error)

// settle runs one terminal transition: preconditions first, then the
// repository marks the booking terminal and zeroes the escrowed amount before
// the custody release is attempted, so a reentrant callback observes a
// non-booked status and the transfer happens at most once per booking.
func (s *BookingService) settle(ctx context.Context, bookingID int64, to domain.BookingStatus, eventType string, check precheck) (*domain.Booking, error) {
	if err := s.enter(bookingKey(bookingID)); err != nil {
		return nil, err
	}
	defer s.exit(bookingKey(bookingID))

	if s.cache != nil {
		ok, err := s.cache.AcquireSettleLock(ctx, bookingID, s.settleLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrReentrancy
		}
		defer func() { _ = s.cache.ReleaseSettleLock(ctx, bookingID) }()
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusBooked {
		return nil, domain.ErrNotBooked
	}
	slot, err := s.slots.GetByID(ctx, b.SlotID)
	if err != nil {
		return nil, err
	}

	recipient, err := check(b, slot, s.clock.Now())
	if err != nil {
		return nil, err
	}

	amount := b.AmountCents
	updated, err := s.bookings.Settle(ctx, bookingID, to, func(ctx context.Context, amountCents int64) error {
		return s.custody.Release(ctx, recipient, amountCents)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, updated, amount)
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking, movedCents int64) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.EscrowEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		SlotID:      b.SlotID,
		BookingID:   b.ID,
		Host:        string(b.Host),
		Guest:       string(b.Guest),
		AmountCents: movedCents,
		Status:      string(b.Status),
		At:          time.Now(),
	}
	key := strconv.FormatInt(b.ID, 10)
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", eventType, b.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %d: %v", eventType, b.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
