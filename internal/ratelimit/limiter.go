// Package ratelimit implements per-client sliding window rate limiting
// keyed by client IP and route prefix.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a limit check. Route is the matched prefix, empty
// when the path is unlimited.
type Result struct {
	Allowed    bool
	Route      string
	RetryAfter time.Duration
}

// Limiter checks requests against the policy table, delegating window
// bookkeeping to the store.
type Limiter struct {
	table *PolicyTable
	store Store

	// failOpen lets requests through when the store errors. On by default:
	// a Redis outage should degrade limiting, not availability.
	failOpen bool
}

func NewLimiter(table *PolicyTable, store Store) *Limiter {
	return &Limiter{table: table, store: store, failOpen: true}
}

// Check resolves the path's policy and consumes a window slot if there is
// room. Denied requests consume nothing, so a client at the limit regains
// its oldest slot exactly one window after that slot was used.
func (l *Limiter) Check(ctx context.Context, clientIP, path string) (Result, error) {
	policy := l.table.Match(path)
	if policy == nil {
		return Result{Allowed: true}, nil
	}
	key := clientIP + "|" + policy.Prefix
	allowed, err := l.store.Allow(ctx, key, policy.MaxRequests, policy.Window)
	if err != nil {
		return Result{Allowed: l.failOpen, Route: policy.Prefix}, err
	}
	if !allowed {
		return Result{Route: policy.Prefix, RetryAfter: policy.Window}, nil
	}
	return Result{Allowed: true, Route: policy.Prefix}, nil
}

func (l *Limiter) Close() error {
	return l.store.Close()
}
