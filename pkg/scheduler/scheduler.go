package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/traceid"
)

const (
	TickDispatch = "dispatch"
	TickHygiene  = "hygiene"
)

// Scheduler drains due notifications on a short interval and runs
// retention and token hygiene on a long one.
type Scheduler struct {
	store      NotificationStore
	dispatcher Dispatcher
	tokens     TokenRegistry
	cleaner    TokenCleaner
	locker     Locker
	observer   Observer
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dispatching atomic.Bool
	cleaning    atomic.Bool
}

// New creates a Scheduler. Token hygiene steps run only when the matching
// dependency is supplied through options.
func New(store NotificationStore, dispatcher Dispatcher, opts ...Option) (*Scheduler, error) {
	if store == nil || dispatcher == nil {
		return nil, ErrMissingDependency
	}

	s := &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		observer:   noopObserver{},
		cfg:        DefaultConfig(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("scheduler"))
	return s, nil
}

// Start launches both loops in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(2)
	go s.loop(ctx, TickDispatch, s.cfg.DispatchInterval, s.dispatchTick)
	go s.loop(ctx, TickHygiene, s.cfg.HygieneInterval, s.hygieneTick)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "scheduler started",
		slog.Duration("dispatch_interval", s.cfg.DispatchInterval),
		slog.Duration("hygiene_interval", s.cfg.HygieneInterval),
		slog.Bool("distributed_lock", s.locker != nil),
	)
	return nil
}

// Stop cancels both loops and waits for an in-flight tick to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.logger.Info("scheduler stopped")
	return nil
}

// Run starts the scheduler and returns a function suitable for errgroup.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return s.Stop()
	}
}

func (s *Scheduler) loop(ctx context.Context, tick string, interval time.Duration, fn func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(traceid.WithContext(ctx, traceid.New()))
		}
	}
}

func (s *Scheduler) dispatchTick(ctx context.Context) {
	_, err := s.RunDispatch(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrDispatchInProgress), errors.Is(err, ErrLockHeld):
		s.observer.TickSkipped(TickDispatch)
		s.logger.LogAttrs(ctx, slog.LevelDebug, "dispatch tick skipped",
			logger.Tick(TickDispatch),
			slog.String("reason", err.Error()),
		)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.LogAttrs(ctx, slog.LevelError, "dispatch tick failed",
			logger.Tick(TickDispatch),
			logger.Error(err),
		)
	}
}

func (s *Scheduler) hygieneTick(ctx context.Context) {
	s.RunHygiene(ctx)
}

// RunDispatch replays one batch of due notifications through the Dispatcher
// and returns how many were dispatched without error. A notification whose
// dispatch fails is marked failed and the batch continues. Overlapping calls
// return ErrDispatchInProgress.
func (s *Scheduler) RunDispatch(ctx context.Context) (int, error) {
	if !s.dispatching.CompareAndSwap(false, true) {
		return 0, ErrDispatchInProgress
	}
	defer s.dispatching.Store(false)

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, s.cfg.LockKey, s.cfg.LockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrLockHeld
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to release dispatch lock",
					logger.Error(err),
				)
			}
		}()
	}

	started := s.now()
	due, err := s.store.ListDue(ctx, started, s.cfg.DispatchBatchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}

		notif := &due[i]
		_, err := s.dispatcher.Dispatch(ctx, notif)
		switch {
		case err == nil:
		case errors.Is(err, notifications.ErrDispatchInFlight):
			// CreateAndSend is still delivering it; the row stays pending
			s.logger.LogAttrs(ctx, slog.LevelDebug, "notification already in flight",
				logger.NotificationID(notif.ID),
			)
			continue
		default:
			s.markFailed(ctx, notif, err)
			continue
		}
		dispatched++
	}

	elapsed := s.now().Sub(started)
	s.observer.TickCompleted(TickDispatch, len(due), elapsed)
	if len(due) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "dispatch tick finished",
			logger.Tick(TickDispatch),
			logger.Count(len(due)),
			slog.Int("dispatched", dispatched),
			logger.Duration(elapsed),
		)
	}
	return dispatched, nil
}

func (s *Scheduler) markFailed(ctx context.Context, notif *notifications.Notification, cause error) {
	s.logger.LogAttrs(ctx, slog.LevelError, "scheduled dispatch failed",
		logger.NotificationID(notif.ID),
		logger.UserID(notif.UserID),
		logger.Error(cause),
	)

	// Someone else already finished it.
	if errors.Is(cause, notifications.ErrInvalidTransition) {
		return
	}

	if err := s.store.MarkFailed(ctx, notif.ID, s.now()); err != nil && !errors.Is(err, notifications.ErrInvalidTransition) {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to mark notification failed",
			logger.NotificationID(notif.ID),
			logger.Error(err),
		)
	}
}

// HygieneReport counts what one hygiene pass removed.
type HygieneReport struct {
	Skipped              bool
	DeletedNotifications int
	StaleTokens          int
	PrunedTokens         int
	InvalidTokens        int
}

// RunHygiene deletes expired notifications and retires stale, long-inactive
// and provider-rejected tokens. Step failures are logged and the remaining
// steps still run. An overlapping call returns a report with Skipped set.
func (s *Scheduler) RunHygiene(ctx context.Context) HygieneReport {
	if !s.cleaning.CompareAndSwap(false, true) {
		s.observer.TickSkipped(TickHygiene)
		return HygieneReport{Skipped: true}
	}
	defer s.cleaning.Store(false)

	started := s.now()
	var report HygieneReport

	if s.cfg.RetentionDays > 0 {
		cutoff := started.AddDate(0, 0, -s.cfg.RetentionDays)
		report.DeletedNotifications = s.step(ctx, "delete_expired_notifications", func() (int, error) {
			return s.store.DeleteOlderThan(ctx, cutoff)
		})
	}

	if s.tokens != nil {
		report.StaleTokens = s.step(ctx, "deactivate_stale_tokens", func() (int, error) {
			return s.tokens.DeactivateStale(ctx, s.cfg.StaleTokenDays)
		})
		report.PrunedTokens = s.step(ctx, "prune_inactive_tokens", func() (int, error) {
			return s.tokens.PruneInactive(ctx, s.cfg.PruneTokenDays)
		})
	}

	if s.cleaner != nil {
		report.InvalidTokens = s.step(ctx, "cleanup_invalid_tokens", func() (int, error) {
			return s.cleaner.CleanupInvalidTokens(ctx)
		})
	}

	elapsed := s.now().Sub(started)
	total := report.DeletedNotifications + report.StaleTokens + report.PrunedTokens + report.InvalidTokens
	s.observer.TickCompleted(TickHygiene, total, elapsed)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "hygiene tick finished",
		logger.Tick(TickHygiene),
		slog.Int("deleted_notifications", report.DeletedNotifications),
		slog.Int("stale_tokens", report.StaleTokens),
		slog.Int("pruned_tokens", report.PrunedTokens),
		slog.Int("invalid_tokens", report.InvalidTokens),
		logger.Duration(elapsed),
	)
	return report
}

func (s *Scheduler) step(ctx context.Context, name string, fn func() (int, error)) int {
	n, err := fn()
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "hygiene step failed",
			logger.Tick(TickHygiene),
			slog.String("step", name),
			logger.Error(err),
		)
		return 0
	}
	return n
}
