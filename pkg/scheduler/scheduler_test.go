package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/scheduler"
	"github.com/dmitrymomot/notifykit/pkg/traceid"
)

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// dispatcherFunc adapts a function to scheduler.Dispatcher.
type dispatcherFunc func(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error)

func (f dispatcherFunc) Dispatch(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
	return f(ctx, n)
}

type MockTokenRegistry struct {
	mock.Mock
}

func (m *MockTokenRegistry) DeactivateStale(ctx context.Context, unusedDays int) (int, error) {
	args := m.Called(ctx, unusedDays)
	return args.Int(0), args.Error(1)
}

func (m *MockTokenRegistry) PruneInactive(ctx context.Context, daysInactive int) (int, error) {
	args := m.Called(ctx, daysInactive)
	return args.Int(0), args.Error(1)
}

type cleanerFunc func(ctx context.Context) (int, error)

func (f cleanerFunc) CleanupInvalidTokens(ctx context.Context) (int, error) { return f(ctx) }

type fakeLocker struct {
	ok       bool
	err      error
	acquired atomic.Int32
	released atomic.Int32
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	if l.err != nil || !l.ok {
		return nil, false, l.err
	}
	l.acquired.Add(1)
	return func(context.Context) error {
		l.released.Add(1)
		return nil
	}, true, nil
}

type recordingObserver struct {
	mu        sync.Mutex
	completed map[string]int
	skipped   map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{completed: map[string]int{}, skipped: map[string]int{}}
}

func (o *recordingObserver) TickCompleted(tick string, processed int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed[tick] += processed
}

func (o *recordingObserver) TickSkipped(tick string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped[tick]++
}

func seed(t *testing.T, store *notifications.MemoryStorage, id string, createdAt time.Time, scheduledAt *time.Time) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), notifications.Notification{
		ID:          id,
		UserID:      "user-1",
		Type:        notifications.EventExportReady,
		Title:       "Export ready",
		Body:        "Download it now",
		Channels:    []notifications.Channel{notifications.ChannelPush},
		Status:      notifications.StatusPending,
		ScheduledAt: scheduledAt,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}))
}

func status(t *testing.T, store *notifications.MemoryStorage, id string) notifications.Status {
	t.Helper()
	n, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return n.Status
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := scheduler.New(nil, dispatcherFunc(nil))
	assert.ErrorIs(t, err, scheduler.ErrMissingDependency)

	_, err = scheduler.New(notifications.NewMemoryStorage(), nil)
	assert.ErrorIs(t, err, scheduler.ErrMissingDependency)
}

func TestRunDispatch_ReplaysDueThroughManager(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	var sent atomic.Int32
	push := notifications.SenderFunc{Ch: notifications.ChannelPush, Fn: func(context.Context, notifications.Notification) notifications.DeliveryResult {
		sent.Add(1)
		return notifications.Succeeded(notifications.ChannelPush, "msg")
	}}
	manager := notifications.NewManager(store, nil, []notifications.ChannelSender{push},
		notifications.WithClock(clock),
		notifications.WithLogger(logger.Noop()),
	)

	past := fixedNow.Add(-time.Minute)
	future := fixedNow.Add(time.Hour)
	seed(t, store, "unscheduled", fixedNow.Add(-2*time.Hour), nil)
	seed(t, store, "due", fixedNow.Add(-time.Hour), &past)
	seed(t, store, "later", fixedNow.Add(-time.Hour), &future)

	obs := newRecordingObserver()
	s, err := scheduler.New(store, manager,
		scheduler.WithClock(clock),
		scheduler.WithLogger(logger.Noop()),
		scheduler.WithObserver(obs),
	)
	require.NoError(t, err)

	n, err := s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), sent.Load())

	assert.Equal(t, notifications.StatusSent, status(t, store, "unscheduled"))
	assert.Equal(t, notifications.StatusSent, status(t, store, "due"))
	assert.Equal(t, notifications.StatusPending, status(t, store, "later"))
	assert.Equal(t, 2, obs.completed[scheduler.TickDispatch])

	// already sent rows are not picked up again
	n, err = s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int32(2), sent.Load())
}

func TestRunDispatch_BatchOldestFirst(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	seed(t, store, "c", fixedNow.Add(-1*time.Minute), nil)
	seed(t, store, "a", fixedNow.Add(-3*time.Minute), nil)
	seed(t, store, "b", fixedNow.Add(-2*time.Minute), nil)

	var order []string
	d := dispatcherFunc(func(_ context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
		order = append(order, n.ID)
		return nil, nil
	})

	cfg := scheduler.DefaultConfig()
	cfg.DispatchBatchSize = 2
	s, err := scheduler.New(store, d, scheduler.WithConfig(cfg), scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	n, err := s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRunDispatch_FailureMarksFailedAndContinues(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	seed(t, store, "first", fixedNow.Add(-3*time.Minute), nil)
	seed(t, store, "broken", fixedNow.Add(-2*time.Minute), nil)
	seed(t, store, "last", fixedNow.Add(-1*time.Minute), nil)

	var seen []string
	d := dispatcherFunc(func(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
		seen = append(seen, n.ID)
		if n.ID == "broken" {
			return nil, errors.New("boom")
		}
		return nil, store.MarkSent(ctx, n.ID, fixedNow)
	})

	s, err := scheduler.New(store, d, scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	n, err := s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "broken", "last"}, seen)
	assert.Equal(t, notifications.StatusSent, status(t, store, "first"))
	assert.Equal(t, notifications.StatusFailed, status(t, store, "broken"))
	assert.Equal(t, notifications.StatusSent, status(t, store, "last"))
}

func TestRunDispatch_SingleFlight(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	seed(t, store, "slow", fixedNow.Add(-time.Minute), nil)

	var (
		enteredOnce sync.Once
		calls       atomic.Int32
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	d := dispatcherFunc(func(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
		calls.Add(1)
		enteredOnce.Do(func() { close(entered) })
		<-release
		return nil, store.MarkSent(ctx, n.ID, fixedNow)
	})

	s, err := scheduler.New(store, d, scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunDispatch(context.Background())
		done <- err
	}()

	<-entered
	_, err = s.RunDispatch(context.Background())
	assert.ErrorIs(t, err, scheduler.ErrDispatchInProgress)

	close(release)
	require.NoError(t, <-done)

	// the guard is released afterwards and the sent row is not replayed
	n, err := s.RunDispatch(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, notifications.StatusSent, status(t, store, "slow"))
}

func TestRunDispatch_Locker(t *testing.T) {
	t.Parallel()

	noop := dispatcherFunc(func(context.Context, *notifications.Notification) ([]notifications.DeliveryResult, error) {
		return nil, nil
	})

	t.Run("held elsewhere", func(t *testing.T) {
		t.Parallel()

		store := notifications.NewMemoryStorage()
		seed(t, store, "n1", fixedNow.Add(-time.Minute), nil)

		s, err := scheduler.New(store, noop, scheduler.WithLocker(&fakeLocker{}), scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
		require.NoError(t, err)

		_, err = s.RunDispatch(context.Background())
		assert.ErrorIs(t, err, scheduler.ErrLockHeld)
		assert.Equal(t, notifications.StatusPending, status(t, store, "n1"))
	})

	t.Run("acquired and released", func(t *testing.T) {
		t.Parallel()

		locker := &fakeLocker{ok: true}
		s, err := scheduler.New(notifications.NewMemoryStorage(), noop, scheduler.WithLocker(locker), scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
		require.NoError(t, err)

		_, err = s.RunDispatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), locker.acquired.Load())
		assert.Equal(t, int32(1), locker.released.Load())
	})

	t.Run("lock error", func(t *testing.T) {
		t.Parallel()

		lockErr := errors.New("redis down")
		s, err := scheduler.New(notifications.NewMemoryStorage(), noop, scheduler.WithLocker(&fakeLocker{err: lockErr}), scheduler.WithLogger(logger.Noop()))
		require.NoError(t, err)

		_, err = s.RunDispatch(context.Background())
		assert.ErrorIs(t, err, lockErr)
	})
}

func TestRunHygiene(t *testing.T) {
	t.Parallel()

	noop := dispatcherFunc(func(context.Context, *notifications.Notification) ([]notifications.DeliveryResult, error) {
		return nil, nil
	})

	t.Run("runs every step", func(t *testing.T) {
		t.Parallel()

		store := notifications.NewMemoryStorage()
		seed(t, store, "ancient", fixedNow.AddDate(0, 0, -91), nil)
		seed(t, store, "recent", fixedNow.AddDate(0, 0, -89), nil)

		tokens := new(MockTokenRegistry)
		tokens.On("DeactivateStale", mock.Anything, 60).Return(3, nil).Once()
		tokens.On("PruneInactive", mock.Anything, 30).Return(2, nil).Once()

		obs := newRecordingObserver()
		s, err := scheduler.New(store, noop,
			scheduler.WithClock(clock),
			scheduler.WithLogger(logger.Noop()),
			scheduler.WithObserver(obs),
			scheduler.WithTokenRegistry(tokens),
			scheduler.WithTokenCleaner(cleanerFunc(func(context.Context) (int, error) { return 4, nil })),
		)
		require.NoError(t, err)

		report := s.RunHygiene(context.Background())
		assert.Equal(t, scheduler.HygieneReport{
			DeletedNotifications: 1,
			StaleTokens:          3,
			PrunedTokens:         2,
			InvalidTokens:        4,
		}, report)
		tokens.AssertExpectations(t)

		_, err = store.Get(context.Background(), "ancient")
		assert.ErrorIs(t, err, notifications.ErrNotificationNotFound)
		assert.Equal(t, notifications.StatusPending, status(t, store, "recent"))
		assert.Equal(t, 10, obs.completed[scheduler.TickHygiene])
	})

	t.Run("failing step does not stop the rest", func(t *testing.T) {
		t.Parallel()

		tokens := new(MockTokenRegistry)
		tokens.On("DeactivateStale", mock.Anything, 60).Return(0, errors.New("db down")).Once()
		tokens.On("PruneInactive", mock.Anything, 30).Return(5, nil).Once()

		var cleaned atomic.Bool
		s, err := scheduler.New(notifications.NewMemoryStorage(), noop,
			scheduler.WithClock(clock),
			scheduler.WithLogger(logger.Noop()),
			scheduler.WithTokenRegistry(tokens),
			scheduler.WithTokenCleaner(cleanerFunc(func(context.Context) (int, error) {
				cleaned.Store(true)
				return 0, errors.New("provider down")
			})),
		)
		require.NoError(t, err)

		report := s.RunHygiene(context.Background())
		assert.Equal(t, 0, report.StaleTokens)
		assert.Equal(t, 5, report.PrunedTokens)
		assert.Equal(t, 0, report.InvalidTokens)
		assert.True(t, cleaned.Load())
		tokens.AssertExpectations(t)
	})

	t.Run("zero retention keeps notifications", func(t *testing.T) {
		t.Parallel()

		store := notifications.NewMemoryStorage()
		seed(t, store, "ancient", fixedNow.AddDate(-5, 0, 0), nil)

		cfg := scheduler.DefaultConfig()
		cfg.RetentionDays = 0
		s, err := scheduler.New(store, noop, scheduler.WithConfig(cfg), scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
		require.NoError(t, err)

		report := s.RunHygiene(context.Background())
		assert.Equal(t, 0, report.DeletedNotifications)
		assert.Equal(t, notifications.StatusPending, status(t, store, "ancient"))
	})
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	seed(t, store, "n1", time.Now().Add(-time.Minute), nil)

	var dispatched atomic.Int32
	d := dispatcherFunc(func(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
		dispatched.Add(1)
		return nil, store.MarkSent(ctx, n.ID, time.Now())
	})

	cfg := scheduler.DefaultConfig()
	cfg.DispatchInterval = 10 * time.Millisecond
	s, err := scheduler.New(store, d, scheduler.WithConfig(cfg), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Stop(), scheduler.ErrNotStarted)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), scheduler.ErrAlreadyStarted)

	assert.Eventually(t, func() bool { return dispatched.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), scheduler.ErrNotStarted)

	// restartable after Stop
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	noop := dispatcherFunc(func(context.Context, *notifications.Notification) ([]notifications.DeliveryResult, error) {
		return nil, nil
	})
	s, err := scheduler.New(notifications.NewMemoryStorage(), noop, scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx)() }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestScheduler_TicksCarryTraceID(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	seed(t, store, "n1", time.Now().Add(-time.Minute), nil)

	traces := make(chan string, 1)
	d := dispatcherFunc(func(ctx context.Context, n *notifications.Notification) ([]notifications.DeliveryResult, error) {
		select {
		case traces <- traceid.FromContext(ctx):
		default:
		}
		return nil, store.MarkSent(ctx, n.ID, time.Now())
	})

	cfg := scheduler.DefaultConfig()
	cfg.DispatchInterval = 10 * time.Millisecond
	s, err := scheduler.New(store, d, scheduler.WithConfig(cfg), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case id := <-traces:
		assert.NotEmpty(t, id)
	case <-time.After(time.Second):
		t.Fatal("dispatch tick did not run")
	}
}

func TestRunDispatch_SkipsNotificationBeingDelivered(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStorage()
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		once  sync.Once
		sends atomic.Int32
	)
	email := notifications.SenderFunc{Ch: notifications.ChannelEmail, Fn: func(context.Context, notifications.Notification) notifications.DeliveryResult {
		sends.Add(1)
		once.Do(func() { close(entered) })
		<-release
		return notifications.Succeeded(notifications.ChannelEmail, "msg")
	}}
	manager := notifications.NewManager(store, nil, []notifications.ChannelSender{email},
		notifications.WithClock(clock),
		notifications.WithLogger(logger.Noop()),
	)
	s, err := scheduler.New(store, manager, scheduler.WithClock(clock), scheduler.WithLogger(logger.Noop()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := manager.CreateAndSend(context.Background(), notifications.SendRequest{
			UserID:   "user-1",
			Type:     notifications.EventExportReady,
			Title:    "Export ready",
			Body:     "Download it now",
			Channels: []notifications.Channel{notifications.ChannelEmail},
		})
		done <- err
	}()
	<-entered

	n, err := s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), sends.Load())

	n, err = s.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int32(1), sends.Load())
}
