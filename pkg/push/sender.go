package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// TokenRegistry is the part of devicetoken.Registry the Sender needs.
type TokenRegistry interface {
	ListActive(ctx context.Context, userID string, platform *devicetoken.Platform) ([]devicetoken.DeviceToken, error)
	ListActiveForUsers(ctx context.Context, userIDs []string) ([]devicetoken.DeviceToken, error)
	ListAllActive(ctx context.Context, afterID string, limit int) ([]devicetoken.DeviceToken, error)
	BulkDeactivate(ctx context.Context, tokens []string) (int, error)
}

// Sender delivers push messages to a user's registered devices and retires
// tokens the provider rejects.
type Sender struct {
	provider Provider
	registry TokenRegistry
	cfg      Config
	logger   *slog.Logger

	pending sync.WaitGroup
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithConfig sets cleanup and retry tuning.
func WithConfig(cfg Config) SenderOption {
	return func(s *Sender) {
		s.cfg = cfg.normalized()
	}
}

// WithLogger sets the logger for the Sender.
func WithLogger(l *slog.Logger) SenderOption {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSender creates a push Sender.
func NewSender(provider Provider, registry TokenRegistry, opts ...SenderOption) *Sender {
	s := &Sender{
		provider: provider,
		registry: registry,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ notifications.ChannelSender = (*Sender)(nil)

func (s *Sender) Channel() notifications.Channel { return notifications.ChannelPush }

// Send delivers n to every active device of its user.
func (s *Sender) Send(ctx context.Context, n notifications.Notification) notifications.DeliveryResult {
	res := s.SendToUser(ctx, n.UserID, MessageFromNotification(n))
	if !res.Success() {
		return notifications.Failed(notifications.ChannelPush, res.Failure())
	}
	return notifications.Succeeded(notifications.ChannelPush, res.MessageID())
}

// SendToUser sends msg to all active tokens of userID.
func (s *Sender) SendToUser(ctx context.Context, userID string, msg Message) Result {
	tokens, err := s.registry.ListActive(ctx, userID, nil)
	if err != nil {
		return Result{Err: err}
	}
	return s.SendToTokens(ctx, tokens, msg)
}

// SendToUsers sends msg to all active tokens of every listed user in one
// multicast.
func (s *Sender) SendToUsers(ctx context.Context, userIDs []string, msg Message) Result {
	tokens, err := s.registry.ListActiveForUsers(ctx, userIDs)
	if err != nil {
		return Result{Err: err}
	}
	return s.SendToTokens(ctx, tokens, msg)
}

// SendToTokens sends msg to tokens. Tokens reported invalid are deactivated
// in the background; call Wait to block until that has finished.
func (s *Sender) SendToTokens(ctx context.Context, tokens []devicetoken.DeviceToken, msg Message) Result {
	if len(tokens) == 0 {
		return Result{Err: ErrNoTokens}
	}

	results, err := s.provider.SendMulticast(ctx, tokens, msg)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "push multicast failed",
			logger.Count(len(tokens)),
			logger.Error(err),
		)
		return Result{Err: errors.Join(ErrProviderFailure, err)}
	}

	res := newResult(results)
	if len(res.InvalidTokens) > 0 {
		s.deactivateAsync(ctx, res.InvalidTokens)
	}
	if res.FailureCount > 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "push delivery partially failed",
			slog.Int("succeeded", res.SuccessCount),
			slog.Int("failed", res.FailureCount),
			slog.Int("invalid", len(res.InvalidTokens)),
		)
	}
	return res
}

func (s *Sender) deactivateAsync(ctx context.Context, tokens []string) {
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		n, err := s.registry.BulkDeactivate(ctx, tokens)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to deactivate invalid push tokens",
				logger.Count(len(tokens)),
				logger.Error(err),
			)
			return
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "invalid push tokens deactivated", logger.Count(n))
	}()
}

// Wait blocks until background token deactivations have finished.
func (s *Sender) Wait() {
	s.pending.Wait()
}

// ValidateToken dry-runs token against the provider. Only a permanent
// rejection returns false; transient errors keep the token.
func (s *Sender) ValidateToken(ctx context.Context, token devicetoken.DeviceToken) bool {
	err := s.provider.Validate(ctx, token)
	if err == nil {
		return true
	}
	if errors.Is(err, ErrTokenInvalid) {
		return false
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "push token validation inconclusive",
		logger.Token(token.Token),
		logger.Error(err),
	)
	return true
}

// CleanupInvalidTokens probes every active token and deactivates the ones
// the provider rejects. Tokens are processed in pages of CleanupBatchSize
// with CleanupPause between pages. Transient probe failures are retried
// with backoff and then treated as valid.
func (s *Sender) CleanupInvalidTokens(ctx context.Context) (int, error) {
	started := time.Now()
	var (
		total   int
		afterID string
	)

	for {
		page, err := s.registry.ListAllActive(ctx, afterID, s.cfg.CleanupBatchSize)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		afterID = page[len(page)-1].ID

		invalid, err := s.probe(ctx, page)
		if err != nil {
			return total, err
		}
		if len(invalid) > 0 {
			n, err := s.registry.BulkDeactivate(ctx, invalid)
			if err != nil {
				return total, err
			}
			total += n
		}

		if len(page) < s.cfg.CleanupBatchSize {
			break
		}
		if err := sleep(ctx, s.cfg.CleanupPause); err != nil {
			return total, err
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "push token cleanup finished",
		logger.Count(total),
		logger.Duration(time.Since(started)),
	)
	return total, nil
}

// probe validates page concurrently and returns the rejected tokens.
func (s *Sender) probe(ctx context.Context, page []devicetoken.DeviceToken) ([]string, error) {
	rejected := make([]bool, len(page))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.CleanupConcurrency)
	for i, tok := range page {
		g.Go(func() error {
			valid, err := s.validateWithRetry(ctx, tok)
			if err != nil {
				return err
			}
			rejected[i] = !valid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var invalid []string
	for i, r := range rejected {
		if r {
			invalid = append(invalid, page[i].Token)
		}
	}
	return invalid, nil
}

// validateWithRetry returns an error only when ctx is done.
func (s *Sender) validateWithRetry(ctx context.Context, tok devicetoken.DeviceToken) (bool, error) {
	backoff := s.cfg.backoff()
	for attempt := 1; ; attempt++ {
		err := s.provider.Validate(ctx, tok)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, ErrTokenInvalid):
			return false, nil
		case ctx.Err() != nil:
			return false, ctx.Err()
		case attempt >= s.cfg.ValidateAttempts:
			s.logger.LogAttrs(ctx, slog.LevelWarn, "push token probe kept failing, keeping token",
				logger.Token(tok.Token),
				logger.RetryCount(attempt),
				logger.Error(err),
			)
			return true, nil
		}
		if err := sleep(ctx, backoff.NextInterval(attempt)); err != nil {
			return false, err
		}
	}
}
