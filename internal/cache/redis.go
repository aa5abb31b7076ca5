package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Veronika2030/supperspot/config"
	"github.com/Veronika2030/supperspot/internal/domain"
)

type RedisCache struct {
	client         *redis.Client
	experiencesTTL time.Duration
	aggregatesTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, experiencesTTL, aggregatesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		experiencesTTL: experiencesTTL,
		aggregatesTTL:  aggregatesTTL,
	}
}

func (c *RedisCache) GetExperiences(ctx context.Context) ([]domain.Experience, error) {
	data, err := c.client.Get(ctx, experiencesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var experiences []domain.Experience
	if err := json.Unmarshal(data, &experiences); err != nil {
		return nil, err
	}
	return experiences, nil
}

func (c *RedisCache) SetExperiences(ctx context.Context, experiences []domain.Experience) error {
	payload, err := json.Marshal(experiences)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, experiencesKey(), payload, c.experiencesTTL).Err()
}

func (c *RedisCache) InvalidateExperiences(ctx context.Context) error {
	return c.client.Del(ctx, experiencesKey()).Err()
}

func (c *RedisCache) GetAggregate(ctx context.Context, experienceID string) (*domain.AggregateRating, error) {
	data, err := c.client.Get(ctx, aggregateKey(experienceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var agg domain.AggregateRating
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

func (c *RedisCache) SetAggregate(ctx context.Context, agg *domain.AggregateRating) error {
	payload, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, aggregateKey(agg.ExperienceID), payload, c.aggregatesTTL).Err()
}

func (c *RedisCache) InvalidateAggregate(ctx context.Context, experienceID string) error {
	return c.client.Del(ctx, aggregateKey(experienceID)).Err()
}

// AcquireReservationLock takes a short-lived advisory lock on the experience
// so a burst of reservations from one client serialises before hitting the
// ledger. Correctness does not depend on it; the ledger stays the authority.
func (c *RedisCache) AcquireReservationLock(ctx context.Context, experienceID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, reservationLockKey(experienceID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseReservationLock(ctx context.Context, experienceID string) error {
	return c.client.Del(ctx, reservationLockKey(experienceID)).Err()
}

func experiencesKey() string {
	return "cache:experiences"
}

func aggregateKey(experienceID string) string {
	return fmt.Sprintf("cache:aggregate:%s", experienceID)
}

func reservationLockKey(experienceID string) string {
	return fmt.Sprintf("lock:experience:%s", experienceID)
}
