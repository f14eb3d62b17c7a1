package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/stayescrow/config"
	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	slotsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, slotsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		slotsTTL: slotsTTL,
	}
}

func (c *RedisCache) GetOpenSlots(ctx context.Context) ([]domain.StaySlot, error) {
	data, err := c.client.Get(ctx, openSlotsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.StaySlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetOpenSlots(ctx context.Context, slots []domain.StaySlot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, openSlotsKey(), payload, c.slotsTTL).Err()
}

func (c *RedisCache) InvalidateOpenSlots(ctx context.Context) error {
	return c.client.Del(ctx, openSlotsKey()).Err()
}

// AcquireSettleLock serializes settlement attempts on one booking across
// engine instances. The TTL bounds how long a crashed holder can block.
func (c *RedisCache) AcquireSettleLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, settleLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSettleLock(ctx context.Context, bookingID int64) error {
	return c.client.Del(ctx, settleLockKey(bookingID)).Err()
}

func openSlotsKey() string {
	return "cache:open_slots"
}

func settleLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d:settle", bookingID)
}
