// Package ratelimit provides the per-provider fetch gate. Every outbound
// call to an upstream provider acquires gate admission first, which paces
// calls, bounds in-flight concurrency, and enforces optional daily budgets.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned when a provider's hard daily call budget
// is used up. Callers must treat the provider as unavailable rather than
// block or retry.
var ErrBudgetExhausted = errors.New("daily call budget exhausted")

// Config defines the pacing policy for one provider.
type Config struct {
	Name          string
	Interval      time.Duration // minimum spacing between calls
	Burst         int           // short-term burst allowance
	MaxConcurrent int           // maximum in-flight calls
	DailyBudget   int           // hard daily call budget, 0 = unlimited
}

// Gate admits calls to a single upstream provider according to its pacing
// policy. It transforms no data; its only observable effect is pacing.
type Gate struct {
	name    string
	limiter *rate.Limiter
	sem     chan struct{}
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	quota int
	used  int
	day   time.Time

	now func() time.Time // injectable for tests
}

// New creates a gate from a pacing config.
func New(cfg Config) *Gate {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	concurrent := cfg.MaxConcurrent
	if concurrent < 1 {
		concurrent = 1
	}

	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}

	g := &Gate{
		name:    cfg.Name,
		limiter: rate.NewLimiter(limit, burst),
		sem:     make(chan struct{}, concurrent),
		quota:   cfg.DailyBudget,
		now:     time.Now,
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: cfg.Name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 60 * time.Second,
	})

	return g
}

// Acquire blocks until the pacing policy admits a call, then returns a
// release function the caller must invoke when the call finishes. When
// the daily budget is exhausted it fails fast with ErrBudgetExhausted
// instead of blocking.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if err := g.consumeBudget(); err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		g.refundBudget()
		return nil, fmt.Errorf("gate %s: %w", g.name, err)
	}

	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		g.refundBudget()
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-g.sem })
	}, nil
}

// Do admits a call through the gate and runs it inside the provider's
// circuit breaker, so a provider that keeps failing is skipped quickly
// during batch runs instead of being hammered.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// Remaining returns calls left in today's budget, or -1 when unlimited.
func (g *Gate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.quota <= 0 {
		return -1
	}
	g.rolloverLocked()
	return g.quota - g.used
}

// consumeBudget takes one call from today's budget.
func (g *Gate) consumeBudget() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.quota <= 0 {
		return nil
	}

	g.rolloverLocked()

	if g.used >= g.quota {
		return fmt.Errorf("gate %s: %w", g.name, ErrBudgetExhausted)
	}
	g.used++
	return nil
}

// refundBudget returns a consumed unit when admission failed before the
// call was made, so a cancelled wait does not burn budget.
func (g *Gate) refundBudget() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.quota <= 0 {
		return
	}
	g.rolloverLocked()
	if g.used > 0 {
		g.used--
	}
}

// rolloverLocked resets the budget counter when the UTC day changes.
func (g *Gate) rolloverLocked() {
	today := g.now().UTC().Truncate(24 * time.Hour)
	if !today.Equal(g.day) {
		g.day = today
		g.used = 0
	}
}
