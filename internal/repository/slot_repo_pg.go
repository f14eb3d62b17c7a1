package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *domain.StaySlot) error
	GetByID(ctx context.Context, id int64) (*domain.StaySlot, error)
	ListOpen(ctx context.Context) ([]domain.StaySlot, error)
	Deactivate(ctx context.Context, id int64) (*domain.StaySlot, error)
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

const slotColumns = `id, host, check_in, check_out, cancel_before, price_cents, active, booked, created_at, updated_at`

func scanSlot(row pgx.Row) (*domain.StaySlot, error) {
	var s domain.StaySlot
	if err := row.Scan(&s.ID, &s.Host, &s.CheckIn, &s.CheckOut, &s.CancelBefore, &s.PriceCents, &s.Active, &s.Booked, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGSlotRepository) Create(ctx context.Context, slot *domain.StaySlot) error {
	slot.Active = true
	slot.Booked = false
	return r.db.QueryRow(ctx, `INSERT INTO stay_slots (host, check_in, check_out, cancel_before, price_cents, active, booked)
		VALUES ($1, $2, $3, $4, $5, true, false)
		RETURNING id, created_at, updated_at`,
		slot.Host, slot.CheckIn, slot.CheckOut, slot.CancelBefore, slot.PriceCents).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id int64) (*domain.StaySlot, error) {
	slot, err := scanSlot(r.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM stay_slots WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	return slot, err
}

func (r *PGSlotRepository) ListOpen(ctx context.Context) ([]domain.StaySlot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM stay_slots WHERE active AND NOT booked ORDER BY check_in`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.StaySlot, 0)
	for rows.Next() {
		var s domain.StaySlot
		if err := rows.Scan(&s.ID, &s.Host, &s.CheckIn, &s.CheckOut, &s.CancelBefore, &s.PriceCents, &s.Active, &s.Booked, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Deactivate withdraws an unbooked slot from the market. The WHERE guard makes
// the transition one-shot even under racing callers.
func (r *PGSlotRepository) Deactivate(ctx context.Context, id int64) (*domain.StaySlot, error) {
	slot, err := scanSlot(r.db.QueryRow(ctx, `UPDATE stay_slots SET active=false, updated_at=now()
		WHERE id=$1 AND active AND NOT booked
		RETURNING `+slotColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSlotInactive
	}
	return slot, err
}

var _ SlotRepository = (*PGSlotRepository)(nil)
