package notifications

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Resolver answers per-user delivery preference questions.
type Resolver interface {
	ResolveChannels(ctx context.Context, userID string, eventType EventType) ([]Channel, error)
	IsInQuietHours(ctx context.Context, userID string, now time.Time) (bool, error)
	// QuietHoursEnd returns the first instant after the active quiet window.
	// ok is false when the user is not inside a window.
	QuietHoursEnd(ctx context.Context, userID string, now time.Time) (end time.Time, ok bool, err error)
}

// SendRequest describes a notification to create and deliver.
type SendRequest struct {
	UserID      string
	Type        EventType
	Title       string
	Body        string
	Data        map[string]string
	Channels    []Channel  // explicit channels; empty means resolve from preferences
	ScheduledAt *time.Time // deliver later; nil means now
}

// SendResult is returned by CreateAndSend.
type SendResult struct {
	Notification Notification
	Deliveries   []DeliveryResult
	// FollowUp is the push-only notification deferred past quiet hours, if any.
	FollowUp *Notification
}

// BulkRequest is the shared payload of SendBulk.
type BulkRequest struct {
	Type     EventType
	Title    string
	Body     string
	Data     map[string]string
	Channels []Channel
}

// UserResult is the outcome of SendBulk for one user.
type UserResult struct {
	UserID string
	Result *SendResult
	Err    error
}

// BulkResult holds per-user outcomes, index-aligned with the requested users.
type BulkResult struct {
	Users []UserResult
}

// Succeeded counts users whose notification was created.
func (r *BulkResult) Succeeded() int {
	n := 0
	for _, u := range r.Users {
		if u.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts users for whom CreateAndSend returned an error.
func (r *BulkResult) Failed() int {
	return len(r.Users) - r.Succeeded()
}

// Manager creates notifications, decides when and where to deliver them and
// records the aggregate outcome.
type Manager struct {
	storage  Storage
	resolver Resolver
	senders  map[Channel]ChannelSender

	logger           *slog.Logger
	observer         Observer
	now              func() time.Time
	bulkConcurrency  int
	fallbackDeferral time.Duration
	sendTimeout      time.Duration

	// IDs of notifications whose delivery is running in this process.
	inflight sync.Map
}

// NewManager creates a Manager. Senders are keyed by their Channel; a later
// sender for the same channel replaces an earlier one.
func NewManager(storage Storage, resolver Resolver, senders []ChannelSender, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage:          storage,
		resolver:         resolver,
		senders:          make(map[Channel]ChannelSender, len(senders)),
		logger:           slog.Default(),
		observer:         noopObserver{},
		now:              time.Now,
		bulkConcurrency:  1,
		fallbackDeferral: DefaultQuietHoursDeferral,
		sendTimeout:      30 * time.Second,
	}
	for _, s := range senders {
		if s != nil {
			m.senders[s.Channel()] = s
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateAndSend validates req, persists the notification and, when it is
// due, delivers it over every selected channel. Channel failures are
// reported in the result; only validation, preference lookup and
// persistence failures return an error.
func (m *Manager) CreateAndSend(ctx context.Context, req SendRequest) (*SendResult, error) {
	now := m.now()

	if err := validateRequest(req, now); err != nil {
		return nil, err
	}

	channels := UniqueChannels(req.Channels)
	if len(channels) == 0 {
		resolved, err := m.resolver.ResolveChannels(ctx, req.UserID, req.Type)
		if err != nil {
			return nil, errors.Join(ErrFailedToResolve, err)
		}
		channels = UniqueChannels(resolved)
	}

	notif := Notification{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Type:        req.Type,
		Title:       req.Title,
		Body:        req.Body,
		Data:        req.Data,
		Channels:    channels,
		Status:      StatusPending,
		ScheduledAt: req.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var followUp *Notification
	if req.ScheduledAt == nil && slices.Contains(channels, ChannelPush) {
		quiet, err := m.resolver.IsInQuietHours(ctx, req.UserID, now)
		if err != nil {
			return nil, errors.Join(ErrFailedToResolve, err)
		}
		if quiet {
			resumeAt := m.quietHoursResume(ctx, req.UserID, now)
			rest := WithoutChannel(channels, ChannelPush)
			if len(rest) == 0 {
				notif.ScheduledAt = &resumeAt
			} else {
				notif.Channels = rest
				fu := notif
				fu.ID = uuid.NewString()
				fu.Channels = []Channel{ChannelPush}
				fu.ScheduledAt = &resumeAt
				followUp = &fu
			}
			m.logger.LogAttrs(ctx, slog.LevelDebug, "push deferred by quiet hours",
				logger.NotificationID(notif.ID),
				logger.UserID(req.UserID),
				slog.Time("resume_at", resumeAt),
			)
		}
	}

	// Claimed before the row becomes visible to ListDue.
	m.inflight.Store(notif.ID, struct{}{})
	defer m.inflight.Delete(notif.ID)

	if err := m.storage.Create(ctx, notif); err != nil {
		return nil, errors.Join(ErrFailedToCreate, err)
	}
	if followUp != nil {
		if err := m.storage.Create(ctx, *followUp); err != nil {
			return nil, errors.Join(ErrFailedToCreate, err)
		}
	}

	result := &SendResult{Notification: notif, Deliveries: []DeliveryResult{}, FollowUp: followUp}
	if !notif.Due(now) {
		return result, nil
	}

	deliveries, err := m.dispatch(ctx, &result.Notification)
	result.Deliveries = deliveries
	if err != nil {
		return result, err
	}
	return result, nil
}

// Dispatch delivers an already persisted pending notification over its
// channels concurrently, then stores the aggregate status. notif is
// updated in place. A notification without channels is marked failed.
//
// Dispatch returns ErrDispatchInFlight while the same notification is being
// delivered elsewhere in this process, and ErrInvalidTransition when the
// stored row is no longer pending. Neither case calls a sender.
func (m *Manager) Dispatch(ctx context.Context, notif *Notification) ([]DeliveryResult, error) {
	if _, busy := m.inflight.LoadOrStore(notif.ID, struct{}{}); busy {
		return nil, ErrDispatchInFlight
	}
	defer m.inflight.Delete(notif.ID)

	// notif may be a stale snapshot taken before another delivery finished.
	stored, err := m.storage.Get(ctx, notif.ID)
	if err != nil {
		return nil, err
	}
	if stored.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	return m.dispatch(ctx, notif)
}

func (m *Manager) dispatch(ctx context.Context, notif *Notification) ([]DeliveryResult, error) {
	start := m.now()

	if len(notif.Channels) == 0 {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "notification has no channels",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.UserID),
		)
		return []DeliveryResult{}, m.finish(ctx, notif, StatusFailed, start)
	}

	futures := make([]*async.Future[DeliveryResult], 0, len(notif.Channels))
	for _, ch := range notif.Channels {
		futures = append(futures, async.Async(ctx, ch, func(ctx context.Context, ch Channel) (DeliveryResult, error) {
			return m.sendOne(ctx, ch, *notif), nil
		}))
	}

	results := make([]DeliveryResult, len(futures))
	for i, o := range async.Settle(futures...) {
		results[i] = o.Value
		if o.Err != nil {
			results[i] = Failed(notif.Channels[i], o.Err)
		}
	}

	for _, r := range results {
		if !r.Success {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "channel delivery failed",
				logger.NotificationID(notif.ID),
				logger.UserID(notif.UserID),
				logger.Channel(r.Channel.String()),
				slog.String("reason", r.Error),
			)
		}
	}

	return results, m.finish(ctx, notif, Aggregate(results), start)
}

func (m *Manager) sendOne(ctx context.Context, ch Channel, notif Notification) DeliveryResult {
	sender, ok := m.senders[ch]
	if !ok {
		return Failed(ch, ErrNoSender)
	}

	ctx, cancel := context.WithTimeout(ctx, m.sendTimeout)
	defer cancel()

	started := m.now()
	r := sender.Send(ctx, notif)
	r.Channel = ch
	m.observer.DeliveryAttempted(ch, r.Success, m.now().Sub(started))
	return r
}

func (m *Manager) finish(ctx context.Context, notif *Notification, status Status, start time.Time) error {
	at := m.now()

	var err error
	switch status {
	case StatusSent:
		err = m.storage.MarkSent(ctx, notif.ID, at)
	case StatusFailed:
		err = m.storage.MarkFailed(ctx, notif.ID, at)
	case StatusPending, StatusRead:
		return nil
	}
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to update notification status",
			logger.NotificationID(notif.ID),
			slog.String("status", status.String()),
			logger.Error(err),
		)
		return errors.Join(ErrFailedToUpdateStatus, err)
	}

	notif.Status = status
	notif.UpdatedAt = at
	if status == StatusSent {
		notif.SentAt = &at
	}
	m.observer.NotificationDispatched(status)
	m.logger.LogAttrs(ctx, slog.LevelDebug, "notification dispatched",
		logger.NotificationID(notif.ID),
		logger.UserID(notif.UserID),
		slog.String("status", status.String()),
		logger.Duration(at.Sub(start)),
	)
	return nil
}

// quietHoursResume returns when deferred push delivery may resume.
func (m *Manager) quietHoursResume(ctx context.Context, userID string, now time.Time) time.Time {
	end, ok, err := m.resolver.QuietHoursEnd(ctx, userID, now)
	if err == nil && ok && end.After(now) {
		return end
	}
	m.logger.LogAttrs(ctx, slog.LevelWarn, "quiet hours end unknown, using fallback deferral",
		logger.UserID(userID),
		logger.Duration(m.fallbackDeferral),
		logger.Error(err),
	)
	return now.Add(m.fallbackDeferral)
}

// SendBulk runs CreateAndSend for every user. A failure for one user is
// recorded and logged; the remaining users are still processed.
func (m *Manager) SendBulk(ctx context.Context, userIDs []string, req BulkRequest) *BulkResult {
	result := &BulkResult{Users: make([]UserResult, len(userIDs))}

	var g errgroup.Group
	g.SetLimit(m.bulkConcurrency)

	for i, userID := range userIDs {
		g.Go(func() error {
			res, err := m.CreateAndSend(ctx, SendRequest{
				UserID:   userID,
				Type:     req.Type,
				Title:    req.Title,
				Body:     req.Body,
				Data:     req.Data,
				Channels: req.Channels,
			})
			result.Users[i] = UserResult{UserID: userID, Result: res, Err: err}
			if err != nil {
				m.logger.LogAttrs(ctx, slog.LevelError, "bulk notification failed for user",
					logger.UserID(userID),
					logger.EventType(req.Type.String()),
					logger.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// MarkAsRead moves a sent notification to read. Marking an already read
// notification again is a no-op.
func (m *Manager) MarkAsRead(ctx context.Context, id string) error {
	changed, err := m.storage.MarkRead(ctx, id, m.now())
	if err != nil {
		return err
	}
	if changed {
		return nil
	}

	n, err := m.storage.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Status == StatusRead {
		return nil
	}
	return ErrInvalidTransition
}

// MarkAllAsRead marks every sent notification of the user as read and
// returns how many changed.
func (m *Manager) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return m.storage.MarkAllRead(ctx, userID, m.now())
}

func (m *Manager) Get(ctx context.Context, id string) (*Notification, error) {
	return m.storage.Get(ctx, id)
}

func (m *Manager) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, userID, opts)
}

func (m *Manager) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.storage.CountUnread(ctx, userID)
}

func validateRequest(req SendRequest, now time.Time) error {
	rules := []validator.Rule{
		validator.Required("user_id", req.UserID),
		validator.Required("title", req.Title),
		validator.Required("body", req.Body),
		validator.InList("type", req.Type, AllEventTypes()),
		validator.EachInList("channels", req.Channels, AllChannels()),
	}
	if req.ScheduledAt != nil {
		rules = append(rules, validator.NotBefore("scheduled_at", *req.ScheduledAt, now))
	}
	return validator.Apply(rules...)
}
