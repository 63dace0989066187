package upload

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for best-effort cleanup failures and
// eviction reporting. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithClock replaces the manager's time source.
// Intended for tests that need deterministic expiry behavior.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSlidingExpiry renews a session's expiry window on each successfully
// recorded chunk, so a slow but active upload is not evicted mid-transfer.
// Disabled by default: expiry is measured from session creation only.
func WithSlidingExpiry(enabled bool) Option {
	return func(m *Manager) {
		m.slidingExpiry = enabled
	}
}

// WithAssembleConcurrency bounds parallel chunk downloads during completion.
// Defaults to 5.
func WithAssembleConcurrency(concurrency int) Option {
	return func(m *Manager) {
		if concurrency > 0 {
			m.assembleConcurrency = concurrency
		}
	}
}
