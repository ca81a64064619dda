package notifications

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
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// MockResolver for testing Manager
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveChannels(ctx context.Context, userID string, eventType EventType) ([]Channel, error) {
	args := m.Called(ctx, userID, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Channel), args.Error(1)
}

func (m *MockResolver) IsInQuietHours(ctx context.Context, userID string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockResolver) QuietHoursEnd(ctx context.Context, userID string, now time.Time) (time.Time, bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

// recordingSender counts calls and returns a fixed outcome.
type recordingSender struct {
	ch    Channel
	ok    bool
	delay time.Duration
	calls atomic.Int32
	mu    sync.Mutex
	seen  []Notification
}

func (s *recordingSender) Channel() Channel { return s.ch }

func (s *recordingSender) Send(ctx context.Context, n Notification) DeliveryResult {
	s.calls.Add(1)
	s.mu.Lock()
	s.seen = append(s.seen, n)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if !s.ok {
		return Failed(s.ch, errors.New(string(s.ch)+" provider unavailable"))
	}
	return Succeeded(s.ch, string(s.ch)+"-msg")
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func notQuiet(r *MockResolver) {
	r.On("IsInQuietHours", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
}

func newTestManager(storage Storage, resolver Resolver, senders ...ChannelSender) *Manager {
	return NewManager(storage, resolver, senders,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger.Noop()),
	)
}

func validRequest() SendRequest {
	return SendRequest{
		UserID:   "user-1",
		Type:     EventInteractionAdded,
		Title:    "New comment",
		Body:     "Someone replied to your story",
		Channels: []Channel{ChannelPush, ChannelEmail},
	}
}

func TestManager_CreateAndSend_PartialFailureIsSent(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	notQuiet(resolver)
	push := &recordingSender{ch: ChannelPush, ok: false}
	email := &recordingSender{ch: ChannelEmail, ok: true}

	m := newTestManager(storage, resolver, push, email)
	res, err := m.CreateAndSend(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, res.Notification.Status)
	require.NotNil(t, res.Notification.SentAt)
	assert.Equal(t, fixedNow, *res.Notification.SentAt)

	require.Len(t, res.Deliveries, 2)
	assert.Equal(t, ChannelPush, res.Deliveries[0].Channel)
	assert.False(t, res.Deliveries[0].Success)
	assert.NotEmpty(t, res.Deliveries[0].Error)
	assert.Equal(t, ChannelEmail, res.Deliveries[1].Channel)
	assert.True(t, res.Deliveries[1].Success)
	assert.Equal(t, "email-msg", res.Deliveries[1].ProviderMessageID)

	stored, err := storage.Get(context.Background(), res.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)
	assert.Equal(t, []Channel{ChannelPush, ChannelEmail}, stored.Channels)
}

func TestManager_CreateAndSend_AllFailedIsFailed(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	notQuiet(resolver)

	m := newTestManager(storage, resolver,
		&recordingSender{ch: ChannelPush},
		&recordingSender{ch: ChannelEmail},
	)
	res, err := m.CreateAndSend(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Notification.Status)
	assert.Nil(t, res.Notification.SentAt)
	require.Len(t, res.Deliveries, 2)
	for _, d := range res.Deliveries {
		assert.False(t, d.Success)
	}

	stored, err := storage.Get(context.Background(), res.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Nil(t, stored.SentAt)
}

func TestManager_CreateAndSend_Validation(t *testing.T) {
	t.Parallel()

	past := fixedNow.Add(-time.Minute)

	tests := []struct {
		name   string
		mutate func(*SendRequest)
		field  string
	}{
		{name: "empty title", mutate: func(r *SendRequest) { r.Title = " " }, field: "title"},
		{name: "empty body", mutate: func(r *SendRequest) { r.Body = "" }, field: "body"},
		{name: "missing user", mutate: func(r *SendRequest) { r.UserID = "" }, field: "user_id"},
		{name: "unknown type", mutate: func(r *SendRequest) { r.Type = "birthday" }, field: "type"},
		{name: "unknown channel", mutate: func(r *SendRequest) { r.Channels = []Channel{"sms"} }, field: "channels"},
		{name: "past schedule", mutate: func(r *SendRequest) { r.ScheduledAt = &past }, field: "scheduled_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			storage := NewMemoryStorage()
			resolver := &MockResolver{}
			push := &recordingSender{ch: ChannelPush, ok: true}
			m := newTestManager(storage, resolver, push)

			req := validRequest()
			tt.mutate(&req)

			res, err := m.CreateAndSend(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, validator.IsValidationError(err))
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))

			assert.Zero(t, push.calls.Load())
			list, _ := storage.List(context.Background(), req.UserID, ListOptions{})
			assert.Empty(t, list)
			resolver.AssertNotCalled(t, "ResolveChannels", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestManager_CreateAndSend_ResolvesChannelsFromPreferences(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	resolver.On("ResolveChannels", mock.Anything, "user-1", EventExportReady).
		Return([]Channel{ChannelEmail, ChannelInApp, ChannelEmail}, nil).Once()
	email := &recordingSender{ch: ChannelEmail, ok: true}
	inApp := &recordingSender{ch: ChannelInApp, ok: true}

	m := newTestManager(NewMemoryStorage(), resolver, email, inApp)

	req := validRequest()
	req.Type = EventExportReady
	req.Channels = nil

	res, err := m.CreateAndSend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []Channel{ChannelEmail, ChannelInApp}, res.Notification.Channels)
	assert.Len(t, res.Deliveries, 2)
	assert.Equal(t, int32(1), email.calls.Load())
	resolver.AssertExpectations(t)
	// no push channel, so quiet hours are not consulted
	resolver.AssertNotCalled(t, "IsInQuietHours", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_CreateAndSend_ResolverError(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	resolver.On("ResolveChannels", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	m := newTestManager(storage, resolver)
	req := validRequest()
	req.Channels = nil

	_, err := m.CreateAndSend(context.Background(), req)
	assert.ErrorIs(t, err, ErrFailedToResolve)
}

func TestManager_CreateAndSend_QuietHoursDefersPush(t *testing.T) {
	t.Parallel()

	quietEnd := time.Date(2024, 3, 11, 8, 1, 0, 0, time.UTC)
	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	resolver.On("IsInQuietHours", mock.Anything, "user-1", fixedNow).Return(true, nil)
	resolver.On("QuietHoursEnd", mock.Anything, "user-1", fixedNow).Return(quietEnd, true, nil)

	push := &recordingSender{ch: ChannelPush, ok: true}
	email := &recordingSender{ch: ChannelEmail, ok: true}
	m := newTestManager(storage, resolver, push, email)

	res, err := m.CreateAndSend(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, []Channel{ChannelEmail}, res.Notification.Channels)
	assert.Equal(t, StatusSent, res.Notification.Status)
	require.Len(t, res.Deliveries, 1)
	assert.Equal(t, ChannelEmail, res.Deliveries[0].Channel)
	assert.Zero(t, push.calls.Load())

	require.NotNil(t, res.FollowUp)
	assert.Equal(t, []Channel{ChannelPush}, res.FollowUp.Channels)
	require.NotNil(t, res.FollowUp.ScheduledAt)
	assert.Equal(t, quietEnd, *res.FollowUp.ScheduledAt)
	assert.NotEqual(t, res.Notification.ID, res.FollowUp.ID)

	fu, err := storage.Get(context.Background(), res.FollowUp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fu.Status)

	due, err := storage.ListDue(context.Background(), fixedNow, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = storage.ListDue(context.Background(), quietEnd, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, res.FollowUp.ID, due[0].ID)
}

func TestManager_CreateAndSend_QuietHoursPushOnlyIsFullyDeferred(t *testing.T) {
	t.Parallel()

	quietEnd := fixedNow.Add(3 * time.Hour)
	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	resolver.On("IsInQuietHours", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	resolver.On("QuietHoursEnd", mock.Anything, mock.Anything, mock.Anything).Return(quietEnd, true, nil)

	push := &recordingSender{ch: ChannelPush, ok: true}
	m := newTestManager(storage, resolver, push)

	req := validRequest()
	req.Channels = []Channel{ChannelPush}

	res, err := m.CreateAndSend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Notification.Status)
	assert.Empty(t, res.Deliveries)
	assert.NotNil(t, res.Deliveries)
	assert.Nil(t, res.FollowUp)
	assert.Equal(t, []Channel{ChannelPush}, res.Notification.Channels)
	require.NotNil(t, res.Notification.ScheduledAt)
	assert.Equal(t, quietEnd, *res.Notification.ScheduledAt)
	assert.Zero(t, push.calls.Load())
}

func TestManager_CreateAndSend_QuietHoursFallbackDeferral(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	resolver.On("IsInQuietHours", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	resolver.On("QuietHoursEnd", mock.Anything, mock.Anything, mock.Anything).Return(time.Time{}, false, nil)

	m := newTestManager(NewMemoryStorage(), resolver, &recordingSender{ch: ChannelEmail, ok: true})
	res, err := m.CreateAndSend(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotNil(t, res.FollowUp)
	assert.Equal(t, fixedNow.Add(DefaultQuietHoursDeferral), *res.FollowUp.ScheduledAt)
}

func TestManager_CreateAndSend_ExplicitScheduleSkipsQuietHours(t *testing.T) {
	t.Parallel()

	at := fixedNow.Add(2 * time.Hour)
	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	push := &recordingSender{ch: ChannelPush, ok: true}
	m := newTestManager(storage, resolver, push)

	req := validRequest()
	req.ScheduledAt = &at

	res, err := m.CreateAndSend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Notification.Status)
	assert.Empty(t, res.Deliveries)
	assert.Equal(t, []Channel{ChannelPush, ChannelEmail}, res.Notification.Channels)
	assert.Zero(t, push.calls.Load())
	resolver.AssertNotCalled(t, "IsInQuietHours", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_CreateAndSend_MissingSender(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	notQuiet(resolver)
	m := newTestManager(NewMemoryStorage(), resolver, &recordingSender{ch: ChannelEmail, ok: true})

	res, err := m.CreateAndSend(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, res.Deliveries, 2)
	assert.False(t, res.Deliveries[0].Success)
	assert.Equal(t, ErrNoSender.Error(), res.Deliveries[0].Error)
	assert.Equal(t, StatusSent, res.Notification.Status)
}

func TestManager_CreateAndSend_ChannelsRunConcurrently(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	notQuiet(resolver)
	m := newTestManager(NewMemoryStorage(), resolver,
		&recordingSender{ch: ChannelPush, ok: true, delay: 60 * time.Millisecond},
		&recordingSender{ch: ChannelEmail, ok: true, delay: 60 * time.Millisecond},
		&recordingSender{ch: ChannelInApp, ok: true, delay: 60 * time.Millisecond},
	)

	req := validRequest()
	req.Channels = AllChannels()

	start := time.Now()
	res, err := m.CreateAndSend(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Deliveries, 3)
	assert.Less(t, time.Since(start), 170*time.Millisecond)
}

func TestManager_CreateAndSend_PersistenceError(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	notQuiet(resolver)
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(), failUser: "user-1"}
	push := &recordingSender{ch: ChannelPush, ok: true}
	m := newTestManager(storage, resolver, push)

	_, err := m.CreateAndSend(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrFailedToCreate)
	assert.Zero(t, push.calls.Load())
}

func TestManager_Dispatch_NoChannelsMarksFailed(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	n := Notification{ID: "n-1", UserID: "user-1", Type: EventExportReady, Status: StatusPending, CreatedAt: fixedNow}
	require.NoError(t, storage.Create(context.Background(), n))

	m := newTestManager(storage, &MockResolver{})
	results, err := m.Dispatch(context.Background(), &n)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, StatusFailed, n.Status)

	stored, err := storage.Get(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestManager_Dispatch_AlreadySentReturnsError(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	n := Notification{ID: "n-1", UserID: "user-1", Channels: []Channel{ChannelInApp}, Status: StatusPending, CreatedAt: fixedNow}
	require.NoError(t, storage.Create(context.Background(), n))
	require.NoError(t, storage.MarkSent(context.Background(), "n-1", fixedNow))

	sender := &recordingSender{ch: ChannelInApp, ok: true}
	m := newTestManager(storage, &MockResolver{}, sender)
	_, err := m.Dispatch(context.Background(), &n)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int32(0), sender.calls.Load(), "a stale pending snapshot is not redelivered")
}

// blockingSender parks every Send until release is closed.
type blockingSender struct {
	ch      Channel
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (s *blockingSender) Channel() Channel { return s.ch }

func (s *blockingSender) Send(context.Context, Notification) DeliveryResult {
	s.calls.Add(1)
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return Succeeded(s.ch, "msg")
}

func TestManager_Dispatch_SkipsNotificationInFlight(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	email := &blockingSender{ch: ChannelEmail, entered: make(chan struct{}), release: make(chan struct{})}
	m := newTestManager(storage, &MockResolver{}, email)

	req := validRequest()
	req.Channels = []Channel{ChannelEmail}

	done := make(chan error, 1)
	go func() {
		_, err := m.CreateAndSend(context.Background(), req)
		done <- err
	}()
	<-email.entered

	due, err := storage.ListDue(context.Background(), fixedNow, 10)
	require.NoError(t, err)
	require.Len(t, due, 1, "the row is pending while its delivery runs")

	_, err = m.Dispatch(context.Background(), &due[0])
	assert.ErrorIs(t, err, ErrDispatchInFlight)

	close(email.release)
	require.NoError(t, <-done)

	// the snapshot taken mid-delivery is stale now
	_, err = m.Dispatch(context.Background(), &due[0])
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, int32(1), email.calls.Load())
	stored, err := storage.Get(context.Background(), due[0].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)
}

func TestManager_Dispatch_ObserverReceivesTelemetry(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	n := Notification{ID: "n-1", UserID: "user-1", Channels: []Channel{ChannelPush, ChannelInApp}, Status: StatusPending, CreatedAt: fixedNow}
	require.NoError(t, storage.Create(context.Background(), n))

	obs := &countingObserver{}
	m := NewManager(storage, &MockResolver{}, []ChannelSender{
		&recordingSender{ch: ChannelPush},
		&recordingSender{ch: ChannelInApp, ok: true},
	}, WithObserver(obs), WithLogger(logger.Noop()))

	_, err := m.Dispatch(context.Background(), &n)
	require.NoError(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.deliveries[ChannelPush][false])
	assert.Equal(t, 1, obs.deliveries[ChannelInApp][true])
	assert.Equal(t, []Status{StatusSent}, obs.dispatched)
}

func TestManager_SendBulk_ContinuesAfterUserFailure(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	notQuiet(resolver)
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(), failUser: "user-2"}
	inApp := &recordingSender{ch: ChannelInApp, ok: true}
	m := newTestManager(storage, resolver, inApp)

	res := m.SendBulk(context.Background(), []string{"user-1", "user-2", "user-3"}, BulkRequest{
		Type:     EventInvitationReceived,
		Title:    "You're invited",
		Body:     "Join the family archive",
		Channels: []Channel{ChannelInApp},
	})

	require.Len(t, res.Users, 3)
	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, 1, res.Failed())

	assert.Equal(t, "user-1", res.Users[0].UserID)
	require.NoError(t, res.Users[0].Err)
	assert.Equal(t, StatusSent, res.Users[0].Result.Notification.Status)

	assert.Equal(t, "user-2", res.Users[1].UserID)
	assert.ErrorIs(t, res.Users[1].Err, ErrFailedToCreate)
	assert.Nil(t, res.Users[1].Result)

	assert.Equal(t, "user-3", res.Users[2].UserID)
	require.NoError(t, res.Users[2].Err)
	assert.Equal(t, StatusSent, res.Users[2].Result.Notification.Status)

	assert.Equal(t, int32(2), inApp.calls.Load())
}

func TestManager_SendBulk_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	resolver := &MockResolver{}
	notQuiet(resolver)
	inApp := &recordingSender{ch: ChannelInApp, ok: true, delay: 50 * time.Millisecond}
	m := NewManager(NewMemoryStorage(), resolver, []ChannelSender{inApp},
		WithBulkConcurrency(4), WithLogger(logger.Noop()))

	users := []string{"u1", "u2", "u3", "u4"}
	start := time.Now()
	res := m.SendBulk(context.Background(), users, BulkRequest{
		Type: EventStoryUploaded, Title: "t", Body: "b", Channels: []Channel{ChannelInApp},
	})
	assert.Equal(t, 4, res.Succeeded())
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	for i, u := range res.Users {
		assert.Equal(t, users[i], u.UserID)
	}
}

func TestManager_MarkAsRead_Idempotent(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	notQuiet(resolver)
	m := newTestManager(storage, resolver, &recordingSender{ch: ChannelInApp, ok: true})

	req := validRequest()
	req.Channels = []Channel{ChannelInApp}
	res, err := m.CreateAndSend(context.Background(), req)
	require.NoError(t, err)
	id := res.Notification.ID

	unread, err := m.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, m.MarkAsRead(context.Background(), id))
	first, err := m.Get(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, m.MarkAsRead(context.Background(), id))
	second, err := m.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, StatusRead, second.Status)
	assert.Equal(t, first, second)

	unread, err = m.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestManager_MarkAsRead_Errors(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	require.NoError(t, storage.Create(context.Background(), Notification{
		ID: "pending-1", UserID: "user-1", Status: StatusPending, CreatedAt: fixedNow,
	}))
	m := newTestManager(storage, &MockResolver{})

	assert.ErrorIs(t, m.MarkAsRead(context.Background(), "pending-1"), ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkAsRead(context.Background(), "missing"), ErrNotificationNotFound)
}

func TestManager_MarkAllAsRead(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	resolver := &MockResolver{}
	notQuiet(resolver)
	m := newTestManager(storage, resolver, &recordingSender{ch: ChannelInApp, ok: true})

	req := validRequest()
	req.Channels = []Channel{ChannelInApp}
	for range 3 {
		_, err := m.CreateAndSend(context.Background(), req)
		require.NoError(t, err)
	}

	n, err := m.MarkAllAsRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = m.MarkAllAsRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := m.List(context.Background(), "user-1", ListOptions{Status: []Status{StatusRead}})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

// failingStorage rejects Create for one user.
type failingStorage struct {
	*MemoryStorage
	failUser string
}

func (s *failingStorage) Create(ctx context.Context, n Notification) error {
	if n.UserID == s.failUser {
		return errors.New("connection reset")
	}
	return s.MemoryStorage.Create(ctx, n)
}

type countingObserver struct {
	mu         sync.Mutex
	deliveries map[Channel]map[bool]int
	dispatched []Status
}

func (o *countingObserver) DeliveryAttempted(ch Channel, success bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deliveries == nil {
		o.deliveries = make(map[Channel]map[bool]int)
	}
	if o.deliveries[ch] == nil {
		o.deliveries[ch] = make(map[bool]int)
	}
	o.deliveries[ch][success]++
}

func (o *countingObserver) NotificationDispatched(s Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatched = append(o.dispatched, s)
}
