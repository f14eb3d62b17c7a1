package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReleaseFunc delivers the escrowed amount to its recipient. Settle invokes it
// after the terminal transition is written but before commit, so a failed
// transfer rolls the transition back.
type ReleaseFunc func(ctx context.Context, amountCents int64) error

type BookingRepository interface {
	Book(ctx context.Context, slotID int64, guest domain.Identity, paidCents int64) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetCheckedIn(ctx context.Context, id int64) (*domain.Booking, error)
	Settle(ctx context.Context, id int64, to domain.BookingStatus, release ReleaseFunc) (*domain.Booking, error)
	ListDue(ctx context.Context, now time.Time, noShowWindow, completionGrace time.Duration) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, slot_id, host, guest, amount_cents, checked_in, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.SlotID, &b.Host, &b.Guest, &b.AmountCents, &b.CheckedIn, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Book marks the slot booked and creates the escrowed booking in one
// transaction. The slot row is locked so the booked flag flips exactly once.
func (r *PGBookingRepository) Book(ctx context.Context, slotID int64, guest domain.Identity, paidCents int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	slot, err := scanSlot(tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM stay_slots WHERE id=$1 FOR UPDATE`, slotID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, err
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

	if _, err := tx.Exec(ctx, `UPDATE stay_slots SET booked=true, updated_at=now() WHERE id=$1`, slotID); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		SlotID:      slotID,
		Host:        slot.Host,
		Guest:       guest,
		AmountCents: slot.PriceCents,
		Status:      domain.BookingStatusBooked,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (slot_id, host, guest, amount_cents, checked_in, status)
		VALUES ($1, $2, $3, $4, false, $5)
		RETURNING id, created_at, updated_at`,
		b.SlotID, b.Host, b.Guest, b.AmountCents, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

// SetCheckedIn flips checked_in while the booking is still in escrow. Repeat
// calls keep returning the row unchanged.
func (r *PGBookingRepository) SetCheckedIn(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET checked_in=true, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+bookingColumns, id, domain.BookingStatusBooked))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, domain.ErrNotBooked
	}
	return b, err
}

// Settle performs the exactly-once terminal transition. The booking row is
// locked, the status guard admits one winner, the escrowed amount is zeroed
// together with the status write, and the release runs before commit so a
// rejected transfer leaves the booking in escrow untouched.
func (r *PGBookingRepository) Settle(ctx context.Context, id int64, to domain.BookingStatus, release ReleaseFunc) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusBooked {
		return nil, domain.ErrAlreadySettled
	}
	amount := current.AmountCents

	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, amount_cents=0, updated_at=now()
		WHERE id=$2
		RETURNING `+bookingColumns, to, id))
	if err != nil {
		return nil, err
	}

	if release != nil {
		if err := release(ctx, amount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// ListDue returns escrowed bookings past a permissionless deadline: not
// checked in and past check_in+noShowWindow, or checked in and past
// check_out+completionGrace.
func (r *PGBookingRepository) ListDue(ctx context.Context, now time.Time, noShowWindow, completionGrace time.Duration) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.slot_id, b.host, b.guest, b.amount_cents, b.checked_in, b.status, b.created_at, b.updated_at
		FROM bookings b JOIN stay_slots s ON s.id = b.slot_id
		WHERE b.status = $1 AND (
			(NOT b.checked_in AND s.check_in + $2::interval <= $4) OR
			(b.checked_in AND s.check_out + $3::interval <= $4)
		)`, domain.BookingStatusBooked, noShowWindow, completionGrace, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.SlotID, &b.Host, &b.Guest, &b.AmountCents, &b.CheckedIn, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		due = append(due, b)
	}
	return due, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
