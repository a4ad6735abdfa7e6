package fetch

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum interval between calls to one provider. All
// callers for the provider share the gate's single last-call timestamp.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate with the given minimum interval.
func NewGate(interval time.Duration) *Gate {
	if interval < 0 {
		interval = 0
	}
	return &Gate{interval: interval}
}

// Interval returns the configured minimum interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Wait blocks until the interval since the last recorded call has elapsed,
// then records now as the new last call. The check, the wait, and the update
// happen under the gate lock so concurrent callers queue behind each other.
func (g *Gate) Wait(ctx context.Context, now func() time.Time, sleep SleepFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() {
		if wait := g.interval - now().Sub(g.last); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	g.last = now()
	return nil
}

// Mark records now as the last call without waiting. It is called when a
// response completes so the interval runs from the end of the call.
func (g *Gate) Mark(now time.Time) {
	g.mu.Lock()
	if now.After(g.last) {
		g.last = now
	}
	g.mu.Unlock()
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
