// Package cache provides the redis-backed schedule cache. Rendered
// calendars are cached per professional and window; lifecycle events
// invalidate every cached window for the affected professional.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "schedule:"

// ScheduleCache caches rendered schedules in redis. Failures degrade to
// cache misses; the cache never fails a request.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New connects to redis and returns a schedule cache.
func New(cfg config.CacheConfig, log *logger.Logger) (*ScheduleCache, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewWithClient(redis.NewClient(opts), cfg.GetScheduleCacheTTL(), log), nil
}

// NewWithClient wraps an existing redis client; tests use this with
// miniredis.
func NewWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl, log: log}
}

// Ping verifies the redis connection.
func (c *ScheduleCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the redis connection.
func (c *ScheduleCache) Close() error {
	return c.client.Close()
}

func scheduleKey(professionalID uuid.UUID, from, to time.Time, slot time.Duration) string {
	return fmt.Sprintf("%s%s:%s:%s:%d",
		keyPrefix, professionalID,
		from.Format("2006-01-02"), to.Format("2006-01-02"),
		int(slot.Minutes()))
}

// Get returns the cached schedule for the window, if present.
func (c *ScheduleCache) Get(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slot time.Duration) ([]availability.DaySchedule, bool) {
	raw, err := c.client.Get(ctx, scheduleKey(professionalID, from, to, slot)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("schedule cache read failed", "error", err)
		}
		return nil, false
	}

	var days []availability.DaySchedule
	if err := json.Unmarshal(raw, &days); err != nil {
		c.log.Warn("schedule cache entry corrupt", "error", err)
		return nil, false
	}
	return days, true
}

// Set stores the rendered schedule for the window.
func (c *ScheduleCache) Set(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slot time.Duration, days []availability.DaySchedule) {
	raw, err := json.Marshal(days)
	if err != nil {
		c.log.Warn("schedule cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, scheduleKey(professionalID, from, to, slot), raw, c.ttl).Err(); err != nil {
		c.log.Warn("schedule cache write failed", "error", err)
	}
}

// Invalidate drops every cached window for the professional.
func (c *ScheduleCache) Invalidate(ctx context.Context, professionalID uuid.UUID) error {
	pattern := keyPrefix + professionalID.String() + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan schedule keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete schedule keys: %w", err)
	}
	return nil
}

// SubscribeInvalidation registers handlers that drop a professional's
// cached schedules whenever their calendar changes.
func (c *ScheduleCache) SubscribeInvalidation(bus events.Bus) {
	invalidate := func(ctx context.Context, professionalID uuid.UUID) error {
		if err := c.Invalidate(ctx, professionalID); err != nil {
			c.log.Warn("schedule cache invalidation failed",
				"professionalId", professionalID, "error", err)
		}
		return nil
	}

	bus.Subscribe(events.RequestAssigned{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.RequestAssigned); ok {
			return invalidate(ctx, e.ProfessionalID)
		}
		return nil
	}))
	bus.Subscribe(events.RequestCompleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.RequestCompleted); ok {
			return invalidate(ctx, e.ProfessionalID)
		}
		return nil
	}))
	bus.Subscribe(events.RequestCancelled{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.RequestCancelled); ok && e.ProfessionalID != nil {
			return invalidate(ctx, *e.ProfessionalID)
		}
		return nil
	}))
}
