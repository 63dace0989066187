package upload

import (
	"context"
	"time"
)

// Reaper invokes a manager's Cleanup on a fixed interval.
// The manager itself holds no timers; a Reaper is the standard wiring for
// deployments that want automatic eviction.
type Reaper struct {
	manager  *Manager
	interval time.Duration
}

// NewReaper creates a reaper that sweeps every interval.
func NewReaper(manager *Manager, interval time.Duration) *Reaper {
	return &Reaper{
		manager:  manager,
		interval: interval,
	}
}

// Run sweeps until ctx is cancelled. It blocks; run it in its own goroutine:
//
//	go reaper.Run(ctx)
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.manager.Cleanup(ctx)
		}
	}
}
