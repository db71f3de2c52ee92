package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/adspacehub/adspace-backend/pkg/logger"
)

const defaultCalendarTTL = time.Minute

// cacheStore is the subset of pkg/redis.Client the calendar cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt64(ctx context.Context, key string) (int64, error)
	AvailabilityKey(spaceID string, version int64, from, to string) string
	SpaceVersionKey(spaceID string) string
}

// CalendarCache stores rendered calendars keyed by a per-space version that is
// bumped whenever the space's lease set changes. Cache failures fall back to
// the loader.
type CalendarCache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
	group singleflight.Group
}

func NewCalendarCache(store cacheStore, ttl time.Duration, logg *logger.Logger) *CalendarCache {
	if ttl <= 0 {
		ttl = defaultCalendarTTL
	}
	return &CalendarCache{store: store, ttl: ttl, logg: logg}
}

// Calendar returns the cached calendar or loads, stores and returns it.
// Concurrent misses for the same key share one load.
func (c *CalendarCache) Calendar(ctx context.Context, spaceID uuid.UUID, from, to string, load func(context.Context) (*Calendar, error)) (*Calendar, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}

	version, err := c.store.GetInt64(ctx, c.store.SpaceVersionKey(spaceID.String()))
	if err != nil {
		c.warn(ctx, spaceID, "availability cache version read failed", err)
		return load(ctx)
	}
	key := c.store.AvailabilityKey(spaceID.String(), version, from, to)

	if raw, err := c.store.Get(ctx, key); err == nil {
		var cal Calendar
		if jsonErr := json.Unmarshal([]byte(raw), &cal); jsonErr == nil {
			return &cal, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		c.warn(ctx, spaceID, "availability cache read failed", err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		cal, err := load(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(cal)
		if err != nil {
			return nil, fmt.Errorf("marshal calendar: %w", err)
		}
		if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
			c.warn(ctx, spaceID, "availability cache write failed", err)
		}
		return cal, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Calendar), nil
}

// Invalidate bumps the version of every given space so older entries are
// never read again. Failures are logged.
func (c *CalendarCache) Invalidate(ctx context.Context, spaceIDs ...uuid.UUID) {
	if c == nil || c.store == nil {
		return
	}
	for _, id := range spaceIDs {
		if _, err := c.store.Incr(ctx, c.store.SpaceVersionKey(id.String())); err != nil {
			c.warn(ctx, id, "availability cache invalidation failed", err)
		}
	}
}

func (c *CalendarCache) warn(ctx context.Context, spaceID uuid.UUID, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithSpaceID(ctx, spaceID.String())
	ctx = c.logg.WithField(ctx, "error", err.Error())
	c.logg.Warn(ctx, msg)
}
