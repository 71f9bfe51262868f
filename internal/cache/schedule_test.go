package cache

import (
	"context"
	"testing"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*ScheduleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, 5*time.Minute, logger.New("development"))
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func sampleSchedule() []availability.DaySchedule {
	return []availability.DaySchedule{
		{
			Date: "2026-09-01",
			Slots: []availability.TimeSlot{
				{
					StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
					EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
					Status:    availability.SlotAvailable,
				},
			},
			Available: 1,
		},
	}
}

func TestScheduleCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	professionalID := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	slot := time.Hour

	if _, ok := c.Get(ctx, professionalID, from, to, slot); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	want := sampleSchedule()
	c.Set(ctx, professionalID, from, to, slot, want)

	got, ok := c.Get(ctx, professionalID, from, to, slot)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Date != "2026-09-01" || got[0].Available != 1 {
		t.Fatalf("cached schedule mismatch: %+v", got)
	}

	// A different slot width is a different cache entry.
	if _, ok := c.Get(ctx, professionalID, from, to, 30*time.Minute); ok {
		t.Fatal("slot width should partition cache entries")
	}
}

func TestScheduleCacheInvalidateIsPerProfessional(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	proA := uuid.New()
	proB := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	c.Set(ctx, proA, from, to, time.Hour, sampleSchedule())
	c.Set(ctx, proA, from, to, 30*time.Minute, sampleSchedule())
	c.Set(ctx, proB, from, to, time.Hour, sampleSchedule())

	if err := c.Invalidate(ctx, proA); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if _, ok := c.Get(ctx, proA, from, to, time.Hour); ok {
		t.Fatal("proA entry survived invalidation")
	}
	if _, ok := c.Get(ctx, proA, from, to, 30*time.Minute); ok {
		t.Fatal("proA half-hour entry survived invalidation")
	}
	if _, ok := c.Get(ctx, proB, from, to, time.Hour); !ok {
		t.Fatal("proB entry wrongly invalidated")
	}
}

func TestScheduleCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	professionalID := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	c.Set(ctx, professionalID, from, to, time.Hour, sampleSchedule())
	mr.FastForward(6 * time.Minute)

	if _, ok := c.Get(ctx, professionalID, from, to, time.Hour); ok {
		t.Fatal("entry survived past its TTL")
	}
}
