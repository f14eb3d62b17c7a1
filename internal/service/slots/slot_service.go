package slots

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/kafka"
	"github.com/Domenick1991/stayescrow/internal/repository"
	"github.com/google/uuid"
)

type SlotUseCase interface {
	CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.StaySlot, error)
	DeactivateSlot(ctx context.Context, caller domain.Identity, slotID int64) (*domain.StaySlot, error)
	GetByID(ctx context.Context, id int64) (*domain.StaySlot, error)
	ListOpen(ctx context.Context) ([]domain.StaySlot, error)
}

type Cache interface {
	GetOpenSlots(ctx context.Context) ([]domain.StaySlot, error)
	SetOpenSlots(ctx context.Context, slots []domain.StaySlot) error
	InvalidateOpenSlots(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateSlotInput struct {
	Host         domain.Identity `json:"host"`
	CheckIn      time.Time       `json:"check_in"`
	CheckOut     time.Time       `json:"check_out"`
	CancelBefore time.Time       `json:"cancel_before"`
	PriceCents   int64           `json:"price_cents"`
}

type SlotService struct {
	repo        repository.SlotRepository
	cache       Cache
	producer    Producer
	eventsTopic string
}

type SlotServiceOption func(*SlotService)

func WithEventsTopic(topic string) SlotServiceOption {
	return func(s *SlotService) {
		s.eventsTopic = topic
	}
}

func NewSlotService(repo repository.SlotRepository, cache Cache, producer Producer, opts ...SlotServiceOption) *SlotService {
	service := &SlotService{repo: repo, cache: cache, producer: producer}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *SlotService) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.StaySlot, error) {
	if !input.CheckOut.After(input.CheckIn) {
		return nil, domain.ErrInvalidTimes
	}
	if input.CancelBefore.After(input.CheckIn) {
		return nil, domain.ErrInvalidTimes
	}
	if input.PriceCents <= 0 {
		return nil, domain.ErrInvalidValue
	}

	slot := &domain.StaySlot{
		Host:         input.Host,
		CheckIn:      input.CheckIn,
		CheckOut:     input.CheckOut,
		CancelBefore: input.CancelBefore,
		PriceCents:   input.PriceCents,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateOpenSlots(ctx)
	}
	s.publish(ctx, "slot_created", slot)
	return slot, nil
}

func (s *SlotService) DeactivateSlot(ctx context.Context, caller domain.Identity, slotID int64) (*domain.StaySlot, error) {
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if caller != slot.Host {
		return nil, domain.ErrNotHost
	}
	if slot.Booked {
		return nil, domain.ErrAlreadyBooked
	}
	if !slot.Active {
		return nil, domain.ErrSlotInactive
	}

	updated, err := s.repo.Deactivate(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateOpenSlots(ctx)
	}
	s.publish(ctx, "slot_deactivated", updated)
	return updated, nil
}

func (s *SlotService) GetByID(ctx context.Context, id int64) (*domain.StaySlot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SlotService) ListOpen(ctx context.Context) ([]domain.StaySlot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetOpenSlots(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOpenSlots(ctx, slots)
	}
	return slots, nil
}

func (s *SlotService) publish(ctx context.Context, eventType string, slot *domain.StaySlot) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.EscrowEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		SlotID:      slot.ID,
		Host:        string(slot.Host),
		AmountCents: 0,
		At:          time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(slot.ID, 10), event); err != nil {
		log.Printf("WARNING: failed to publish %s event for slot %d: %v", eventType, slot.ID, err)
	}
}

var _ SlotUseCase = (*SlotService)(nil)
