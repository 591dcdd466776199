// Package ratelimit implements fixed-window request counting with independent
// per-class budgets. Counters live in an injected CounterStore so a single
// process can use the in-memory store while multi-instance deployments share
// a Redis-backed one without touching the decision logic.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Class is a rate-limiting category assigned per route.
type Class string

const (
	// ClassAuth covers credential-sensitive routes (login, register, refresh).
	ClassAuth Class = "auth"
	// ClassGeneral covers everything else.
	ClassGeneral Class = "general"
)

// ClassConfig sets the budget for one class.
type ClassConfig struct {
	Limit  int64
	Window time.Duration
}

// DefaultClasses mirrors the production budgets: 100 auth requests and 1000
// general requests per 15-minute window.
func DefaultClasses() map[Class]ClassConfig {
	return map[Class]ClassConfig{
		ClassAuth:    {Limit: 100, Window: 15 * time.Minute},
		ClassGeneral: {Limit: 1000, Window: 15 * time.Minute},
	}
}

// Decision reports the outcome of a single rate check.
type Decision struct {
	Allowed    bool
	Class      Class
	Limit      int64
	Count      int64
	RetryAfter time.Duration
}

// CounterStore persists per-key window counters. Incr must be linearizable per
// key: the rollover reset and the increment happen as one atomic step, so two
// concurrent callers can never both observe the same pre-increment count.
type CounterStore interface {
	Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error)
}

// Limiter applies class budgets on top of a CounterStore.
type Limiter struct {
	store   CounterStore
	classes map[Class]ClassConfig
	now     func() time.Time
}

// NewLimiter builds a limiter over the given store and class table.
func NewLimiter(store CounterStore, classes map[Class]ClassConfig) *Limiter {
	if store == nil {
		panic("ratelimit: counter store is required")
	}
	if len(classes) == 0 {
		classes = DefaultClasses()
	}
	return &Limiter{store: store, classes: classes, now: time.Now}
}

// Check records one request for the identity under the given class and decides
// whether it may proceed. Counts 1..limit-1 are allowed; the request that
// brings the count to the limit is the first rejection and the counter stays
// saturated until the window rolls over.
func (l *Limiter) Check(ctx context.Context, identity string, class Class) (Decision, error) {
	cfg, ok := l.classes[class]
	if !ok {
		return Decision{}, fmt.Errorf("ratelimit: unknown class %q", class)
	}

	now := l.now()
	windowStart := now.Truncate(cfg.Window)
	key := string(class) + ":" + identity

	count, err := l.store.Incr(ctx, key, windowStart, cfg.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: increment %q: %w", key, err)
	}

	decision := Decision{
		Allowed: count < cfg.Limit,
		Class:   class,
		Limit:   cfg.Limit,
		Count:   count,
	}
	if !decision.Allowed {
		decision.RetryAfter = windowStart.Add(cfg.Window).Sub(now)
	}

	return decision, nil
}
