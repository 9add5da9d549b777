// Package flags resolves the enrollment-mode feature flag from Redis.
//
// Keys:
//
//	coach:flags:enrollment-mode            → global mode value
//	coach:flags:enrollment-mode:overrides  → hash of user_id → mode value
//
// Lookup order: per-user override, global value, configured default. A Redis
// outage or an unknown value falls back to the default — flag resolution
// never blocks a registration.
package flags

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"jobmate/coach-service/internal/enrollment"
)

const (
	flagKey         = "coach:flags:enrollment-mode"
	flagOverrideKey = flagKey + ":overrides"
)

// Resolver implements enrollment.ModeResolver on a Redis client.
type Resolver struct {
	rdb *redis.Client
	def enrollment.Mode
	log *slog.Logger
}

// NewResolver returns a Resolver falling back to def.
func NewResolver(rdb *redis.Client, def enrollment.Mode, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{rdb: rdb, def: def, log: log}
}

// Mode returns the enrollment mode for userID.
func (r *Resolver) Mode(ctx context.Context, userID string) enrollment.Mode {
	if m, ok := r.lookup(func() (string, error) {
		return r.rdb.HGet(ctx, flagOverrideKey, userID).Result()
	}, "override"); ok {
		return m
	}
	if m, ok := r.lookup(func() (string, error) {
		return r.rdb.Get(ctx, flagKey).Result()
	}, "global"); ok {
		return m
	}
	return r.def
}

// lookup runs one flag fetch and parses the value. A missing key is a normal
// miss; anything else is logged.
func (r *Resolver) lookup(fetch func() (string, error), level string) (enrollment.Mode, bool) {
	v, err := fetch()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("flag lookup failed", "level", level, "err", err)
		}
		return "", false
	}
	m, err := enrollment.ParseMode(v)
	if err != nil {
		r.log.Warn("flag value invalid", "level", level, "value", v)
		return "", false
	}
	return m, true
}
