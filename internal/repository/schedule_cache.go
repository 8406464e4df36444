package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evlats/bookable/internal/booking"
	"github.com/evlats/bookable/internal/schedule"
)

// ScheduleCache caches resolved daily schedules in Redis. Resolution is a
// pure function of the weekly template and the date exception, so a cached
// entry stays valid until one of those records changes; the availability
// write handlers call Invalidate* accordingly. The TTL is only a backstop
// for missed invalidations. Cache failures degrade to resolving directly —
// Redis being down must never block bookings.
type ScheduleCache struct {
	inner booking.ScheduleResolver
	rdb   *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewScheduleCache wraps a resolver with a Redis cache. A nil client
// returns the inner resolver's results uncached.
func NewScheduleCache(inner booking.ScheduleResolver, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ScheduleCache {
	return &ScheduleCache{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func cacheKey(providerID string, date schedule.Date) string {
	return "sched:" + providerID + ":" + date.String()
}

// Resolve returns the cached schedule when present, otherwise resolves and
// stores it.
func (c *ScheduleCache) Resolve(ctx context.Context, providerID string, date schedule.Date) (schedule.EffectiveSchedule, error) {
	if c.rdb == nil {
		return c.inner.Resolve(ctx, providerID, date)
	}
	key := cacheKey(providerID, date)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var s schedule.EffectiveSchedule
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		// Unreadable entry: drop it and fall through to a fresh resolve.
		_ = c.rdb.Del(ctx, key).Err()
	}

	s, err := c.inner.Resolve(ctx, providerID, date)
	if err != nil {
		return s, err
	}
	if raw, err := json.Marshal(s); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
		}
	}
	return s, nil
}

// InvalidateDate evicts the cached schedule for one (provider, date), used
// after an exception write.
func (c *ScheduleCache) InvalidateDate(ctx context.Context, providerID string, date schedule.Date) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(providerID, date)).Err(); err != nil {
		c.log.Warn().Err(err).Str("provider_id", providerID).Msg("schedule cache invalidation failed")
	}
}

// InvalidateProvider evicts every cached schedule for the provider, used
// after a weekly template write which affects an unbounded set of dates.
func (c *ScheduleCache) InvalidateProvider(ctx context.Context, providerID string) {
	if c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, "sched:"+providerID+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", iter.Val()).Msg("schedule cache invalidation failed")
			return
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Str("provider_id", providerID).Msg("schedule cache scan failed")
	}
}
