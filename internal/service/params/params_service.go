package params

import (
	"context"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/repository"
)

// Bounds for both windows. Out-of-range values are rejected, never clamped.
const (
	MinWindow = time.Hour
	MaxWindow = 7 * 24 * time.Hour
)

type ParamsUseCase interface {
	SetNoShowWindow(ctx context.Context, caller domain.Identity, window time.Duration) error
	SetCompletionGrace(ctx context.Context, caller domain.Identity, grace time.Duration) error
	Windows(ctx context.Context) (noShow, grace time.Duration, err error)
}

type ParamsService struct {
	repo            repository.ParamRepository
	admin           domain.Identity
	defaultNoShow   time.Duration
	defaultGrace    time.Duration
}

func NewParamsService(repo repository.ParamRepository, admin domain.Identity, defaultNoShow, defaultGrace time.Duration) *ParamsService {
	return &ParamsService{
		repo:          repo,
		admin:         admin,
		defaultNoShow: defaultNoShow,
		defaultGrace:  defaultGrace,
	}
}

func (s *ParamsService) SetNoShowWindow(ctx context.Context, caller domain.Identity, window time.Duration) error {
	// Bounds come first: an out-of-range value is rejected whoever asks.
	if window < MinWindow || window > MaxWindow {
		return domain.ErrParamOutOfRange
	}
	if caller != s.admin {
		return domain.ErrNotAdmin
	}

	_, grace, err := s.Windows(ctx)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, repository.EscrowParams{NoShowWindow: window, CompletionGrace: grace})
}

func (s *ParamsService) SetCompletionGrace(ctx context.Context, caller domain.Identity, grace time.Duration) error {
	if grace < MinWindow || grace > MaxWindow {
		return domain.ErrParamOutOfRange
	}
	if caller != s.admin {
		return domain.ErrNotAdmin
	}

	noShow, _, err := s.Windows(ctx)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, repository.EscrowParams{NoShowWindow: noShow, CompletionGrace: grace})
}

// Windows returns the current windows, falling back to the configured
// defaults until the administrator has stored anything.
func (s *ParamsService) Windows(ctx context.Context) (time.Duration, time.Duration, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return 0, 0, err
	}
	if stored == nil {
		return s.defaultNoShow, s.defaultGrace, nil
	}
	return stored.NoShowWindow, stored.CompletionGrace, nil
}

var _ ParamsUseCase = (*ParamsService)(nil)
