package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository is the default value-transfer channel: released escrow is
// credited to a per-identity balance.
type LedgerRepository interface {
	Credit(ctx context.Context, owner domain.Identity, amountCents int64) error
	Balance(ctx context.Context, owner domain.Identity) (int64, error)
}

type PGLedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) LedgerRepository {
	return &PGLedgerRepository{db: db}
}

func (r *PGLedgerRepository) Credit(ctx context.Context, owner domain.Identity, amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidValue
	}
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (owner, balance_cents)
		VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET balance_cents = accounts.balance_cents + $2`,
		owner, amountCents)
	return err
}

func (r *PGLedgerRepository) Balance(ctx context.Context, owner domain.Identity) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance_cents FROM accounts WHERE owner=$1`, owner).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

var _ LedgerRepository = (*PGLedgerRepository)(nil)
