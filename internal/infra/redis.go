package infra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// ── Rate cache ────────────────────────────────────────────────────────────────
// Resolved rates live in one hash so a single DEL invalidates everything after
// a rate change. The key expires after ttl, bounding how long a value written
// by a reader racing an update can survive.

const RateCacheKey = "rates:resolved"

type RateCache struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *CircuitBreaker
}

func NewRateCache(rdb *redis.Client, ttl time.Duration, cb *CircuitBreaker) *RateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &RateCache{rdb: rdb, ttl: ttl, cb: cb}
}

func rateField(metal, purity string) string { return metal + "|" + purity }

// Get reports a miss on any redis error; the caller falls back to the database.
func (c *RateCache) Get(ctx context.Context, metal, purity string) (decimal.Decimal, bool) {
	var raw string
	err := c.cb.Execute(func() error {
		v, err := c.rdb.HGet(ctx, RateCacheKey, rateField(metal, purity)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = v
		return err
	})
	if err != nil || raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (c *RateCache) Set(ctx context.Context, metal, purity string, rate decimal.Decimal) {
	err := c.cb.Execute(func() error {
		pipe := c.rdb.TxPipeline()
		pipe.HSet(ctx, RateCacheKey, rateField(metal, purity), rate.StringFixed(2))
		pipe.Expire(ctx, RateCacheKey, c.ttl)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		log.Debug().Err(err).Str("metal", metal).Str("purity", purity).Msg("rate cache: set skipped")
	}
}

func (c *RateCache) Invalidate(ctx context.Context) {
	err := c.cb.Execute(func() error {
		return c.rdb.Del(ctx, RateCacheKey).Err()
	})
	if err != nil {
		log.Warn().Err(err).Msg("rate cache: invalidate failed, entries expire with the ttl")
	}
}
