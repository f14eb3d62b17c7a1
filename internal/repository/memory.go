package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
)

// In-memory stores for local runs and deterministic tests. Same guarded
// transitions as the PG repositories, without the database.

type MemorySlotRepository struct {
	mu     sync.Mutex
	nextID int64
	slots  map[int64]*domain.StaySlot
}

func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{nextID: 1, slots: make(map[int64]*domain.StaySlot)}
}

func (r *MemorySlotRepository) Create(ctx context.Context, slot *domain.StaySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	slot.ID = r.nextID
	r.nextID++
	slot.Active = true
	slot.Booked = false
	slot.CreatedAt = now
	slot.UpdatedAt = now
	stored := *slot
	r.slots[slot.ID] = &stored
	return nil
}

func (r *MemorySlotRepository) GetByID(ctx context.Context, id int64) (*domain.StaySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *MemorySlotRepository) ListOpen(ctx context.Context) ([]domain.StaySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	open := make([]domain.StaySlot, 0)
	for _, slot := range r.slots {
		if slot.Open() {
			open = append(open, *slot)
		}
	}
	return open, nil
}

func (r *MemorySlotRepository) Deactivate(ctx context.Context, id int64) (*domain.StaySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	if !slot.Open() {
		return nil, domain.ErrSlotInactive
	}
	slot.Active = false
	slot.UpdatedAt = time.Now()
	copied := *slot
	return &copied, nil
}

var _ SlotRepository = (*MemorySlotRepository)(nil)

type MemoryBookingRepository struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking
	slots    *MemorySlotRepository
}

// NewMemoryBookingRepository shares the slot store so Book can flip the
// one-shot booked flag together with the booking insert.
func NewMemoryBookingRepository(slots *MemorySlotRepository) *MemoryBookingRepository {
	return &MemoryBookingRepository{nextID: 1, bookings: make(map[int64]*domain.Booking), slots: slots}
}

func (r *MemoryBookingRepository) Book(ctx context.Context, slotID int64, guest domain.Identity, paidCents int64) (*domain.Booking, error) {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots.slots[slotID]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	if slot.Booked {
		return nil, domain.ErrAlreadyBooked
	}
	if !slot.Active {
		return nil, domain.ErrSlotInactive
	}
	if paidCents != slot.PriceCents {
		return nil, domain.ErrInvalidValue
	}

	now := time.Now()
	slot.Booked = true
	slot.UpdatedAt = now

	b := &domain.Booking{
		ID:          r.nextID,
		SlotID:      slotID,
		Host:        slot.Host,
		Guest:       guest,
		AmountCents: slot.PriceCents,
		Status:      domain.BookingStatusBooked,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.nextID++
	r.bookings[b.ID] = b
	copied := *b
	return &copied, nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *MemoryBookingRepository) SetCheckedIn(ctx context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != domain.BookingStatusBooked {
		return nil, domain.ErrNotBooked
	}
	b.CheckedIn = true
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (r *MemoryBookingRepository) Settle(ctx context.Context, id int64, to domain.BookingStatus, release ReleaseFunc) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != domain.BookingStatusBooked {
		return nil, domain.ErrAlreadySettled
	}

	// Terminal state is written before the transfer; a failed transfer
	// restores the escrowed snapshot.
	prev := *b
	b.Status = to
	b.AmountCents = 0
	b.UpdatedAt = time.Now()

	if release != nil {
		if err := release(ctx, prev.AmountCents); err != nil {
			*b = prev
			return nil, err
		}
	}
	copied := *b
	return &copied, nil
}

func (r *MemoryBookingRepository) ListDue(ctx context.Context, now time.Time, noShowWindow, completionGrace time.Duration) ([]domain.Booking, error) {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []domain.Booking
	for _, b := range r.bookings {
		if b.Status != domain.BookingStatusBooked {
			continue
		}
		slot, ok := r.slots.slots[b.SlotID]
		if !ok {
			continue
		}
		if !b.CheckedIn && !now.Before(slot.CheckIn.Add(noShowWindow)) {
			due = append(due, *b)
		} else if b.CheckedIn && !now.Before(slot.CheckOut.Add(completionGrace)) {
			due = append(due, *b)
		}
	}
	return due, nil
}

var _ BookingRepository = (*MemoryBookingRepository)(nil)

type MemoryParamRepository struct {
	mu     sync.Mutex
	params *EscrowParams
}

func NewMemoryParamRepository() *MemoryParamRepository {
	return &MemoryParamRepository{}
}

func (r *MemoryParamRepository) Get(ctx context.Context) (*EscrowParams, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.params == nil {
		return nil, nil
	}
	copied := *r.params
	return &copied, nil
}

func (r *MemoryParamRepository) Set(ctx context.Context, params EscrowParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.params = &params
	return nil
}

var _ ParamRepository = (*MemoryParamRepository)(nil)

type MemoryLedgerRepository struct {
	mu       sync.Mutex
	balances map[domain.Identity]int64
}

func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{balances: make(map[domain.Identity]int64)}
}

func (r *MemoryLedgerRepository) Credit(ctx context.Context, owner domain.Identity, amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidValue
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances[owner] += amountCents
	return nil
}

func (r *MemoryLedgerRepository) Balance(ctx context.Context, owner domain.Identity) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.balances[owner], nil
}

var _ LedgerRepository = (*MemoryLedgerRepository)(nil)
