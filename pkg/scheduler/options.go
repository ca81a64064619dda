package scheduler

import (
	"log/slog"
	"time"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConfig sets intervals, batch size and hygiene thresholds.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg.normalized()
	}
}

// WithLogger sets the logger for the Scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenRegistry enables stale-token deactivation and inactive-token pruning.
func WithTokenRegistry(r TokenRegistry) Option {
	return func(s *Scheduler) {
		s.tokens = r
	}
}

// WithTokenCleaner enables provider-side token validation during hygiene.
func WithTokenCleaner(c TokenCleaner) Option {
	return func(s *Scheduler) {
		s.cleaner = c
	}
}

// WithLocker adds a distributed lock around the dispatch tick.
func WithLocker(l Locker) Option {
	return func(s *Scheduler) {
		s.locker = l
	}
}

// WithObserver sets the tick telemetry sink.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}
