package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EscrowParams are the two tunable settlement windows, durable across
// restarts. A missing row means the configured defaults apply.
type EscrowParams struct {
	NoShowWindow    time.Duration
	CompletionGrace time.Duration
}

type ParamRepository interface {
	Get(ctx context.Context) (*EscrowParams, error)
	Set(ctx context.Context, params EscrowParams) error
}

type PGParamRepository struct {
	db *pgxpool.Pool
}

func NewParamRepository(db *pgxpool.Pool) ParamRepository {
	return &PGParamRepository{db: db}
}

func (r *PGParamRepository) Get(ctx context.Context) (*EscrowParams, error) {
	var noShowSecs, graceSecs int64
	err := r.db.QueryRow(ctx, `SELECT no_show_window_secs, completion_grace_secs FROM escrow_params WHERE id=1`).
		Scan(&noShowSecs, &graceSecs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &EscrowParams{
		NoShowWindow:    time.Duration(noShowSecs) * time.Second,
		CompletionGrace: time.Duration(graceSecs) * time.Second,
	}, nil
}

func (r *PGParamRepository) Set(ctx context.Context, params EscrowParams) error {
	_, err := r.db.Exec(ctx, `INSERT INTO escrow_params (id, no_show_window_secs, completion_grace_secs, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET no_show_window_secs=$1, completion_grace_secs=$2, updated_at=now()`,
		int64(params.NoShowWindow/time.Second), int64(params.CompletionGrace/time.Second))
	return err
}

var _ ParamRepository = (*PGParamRepository)(nil)
