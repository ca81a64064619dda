// Command notifyd runs the notification scheduler together with an
// operational HTTP endpoint exposing health probes and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/devicetoken"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/inapp"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/mongo"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/preferences"
	"github.com/dmitrymomot/notifykit/pkg/push"
	"github.com/dmitrymomot/notifykit/pkg/redis"
	"github.com/dmitrymomot/notifykit/pkg/scheduler"
	"github.com/dmitrymomot/notifykit/pkg/traceid"
)

type appConfig struct {
	Logger      logger.Config
	Postgres    pg.Config
	Redis       redis.Config
	Mongo       mongo.Config
	Email       email.Config
	Push        push.Config
	FCM         push.FCMConfig
	WebPush     push.WebPushConfig
	DeviceToken devicetoken.Config
	Scheduler   scheduler.Config
	HTTP        httpserver.Config

	PreferencesDefaultsFile string        `env:"PREFERENCES_DEFAULTS_FILE"`
	SendTimeout             time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"30s"`
	BulkConcurrency         int           `env:"NOTIFY_BULK_CONCURRENCY" envDefault:"10"`
	MetricsNamespace        string        `env:"METRICS_NAMESPACE" envDefault:"notifykit"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("notifyd stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Logger,
		logger.WithContextExtractors(traceid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}
	schedOpts := []scheduler.Option{
		scheduler.WithConfig(cfg.Scheduler),
		scheduler.WithLogger(log),
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.WarnContext(ctx, "failed to close redis client", logger.Error(err))
			}
		}()
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		schedOpts = append(schedOpts, scheduler.WithLocker(redis.NewLocker(client, cfg.Redis.LockPrefix)))
	}

	var prefStorage preferences.Storage = preferences.NewPostgresStorage(pool)
	if cfg.Mongo.Enabled() {
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			// ctx is already done at this point
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.WarnContext(dctx, "failed to disconnect mongo client", logger.Error(err))
			}
		}()
		checks = append(checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(client)})
		prefStorage = preferences.NewMongoStorage(client.Database(cfg.Mongo.Database))
	}

	defaults, err := loadPreferenceDefaults(cfg.PreferencesDefaultsFile)
	if err != nil {
		return err
	}
	resolver := preferences.NewResolver(prefStorage,
		preferences.WithDefaults(defaults),
		preferences.WithLogger(log),
	)

	registry := devicetoken.NewRegistry(devicetoken.NewPostgresStorage(pool),
		devicetoken.WithConfig(cfg.DeviceToken),
		devicetoken.WithLogger(log),
	)

	provider, err := newPushProvider(ctx, cfg, log)
	if err != nil {
		return err
	}
	pushSender := push.NewSender(provider, registry,
		push.WithConfig(cfg.Push),
		push.WithLogger(log),
	)
	defer pushSender.Wait()

	mailer, err := email.NewFromConfig(cfg.Email)
	if err != nil {
		return err
	}
	emailSender := email.NewNotifier(mailer, email.NewPostgresAddressBook(pool, ""),
		email.WithBatchSize(cfg.Email.BatchSize),
		email.WithBatchDelay(cfg.Email.BatchDelay),
		email.WithLogger(log),
	)

	hub := inapp.NewHub(inapp.DefaultBufferSize)
	defer func() {
		if err := hub.Close(); err != nil {
			log.WarnContext(ctx, "failed to close in-app hub", logger.Error(err))
		}
	}()
	inappSender := inapp.NewSender(hub, inapp.WithLogger(log))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(reg, cfg.MetricsNamespace)

	manager := notifications.NewManager(
		notifications.NewPostgresStorage(pool),
		resolver,
		[]notifications.ChannelSender{pushSender, emailSender, inappSender},
		notifications.WithLogger(log),
		notifications.WithObserver(collector),
		notifications.WithSendTimeout(cfg.SendTimeout),
		notifications.WithBulkConcurrency(cfg.BulkConcurrency),
	)

	sched, err := scheduler.New(notifications.NewPostgresStorage(pool), manager, append(schedOpts,
		scheduler.WithTokenRegistry(registry),
		scheduler.WithTokenCleaner(pushSender),
		scheduler.WithObserver(collector),
	)...)
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(sched.Run(gctx))
	g.Go(func() error {
		return srv.Run(gctx, httpserver.NewOpsRouter(log, reg, checks...))
	})

	log.InfoContext(ctx, "notifyd started",
		slog.String("ops_addr", cfg.HTTP.Addr),
		slog.String("email_provider", cfg.Email.Provider),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Bool("mongo", cfg.Mongo.Enabled()),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.InfoContext(context.Background(), "notifyd stopped")
	return nil
}

// newPushProvider routes android and ios tokens to FCM and web tokens to
// Web Push. Platforms without credentials fall back to the dev provider.
func newPushProvider(ctx context.Context, cfg appConfig, log *slog.Logger) (push.Provider, error) {
	dev := push.NewDevProvider(log)
	providers := map[devicetoken.Platform]push.Provider{
		devicetoken.PlatformAndroid: dev,
		devicetoken.PlatformIOS:     dev,
		devicetoken.PlatformWeb:     dev,
	}

	if cfg.FCM.Enabled() {
		fcm, err := push.NewFCMProvider(ctx, cfg.FCM)
		if err != nil {
			return nil, err
		}
		providers[devicetoken.PlatformAndroid] = fcm
		providers[devicetoken.PlatformIOS] = fcm
	}
	if cfg.WebPush.Enabled() {
		wp, err := push.NewWebPushProvider(cfg.WebPush)
		if err != nil {
			return nil, err
		}
		providers[devicetoken.PlatformWeb] = wp
	}

	return push.NewRouter(providers), nil
}

func loadPreferenceDefaults(path string) (preferences.Defaults, error) {
	if path == "" {
		return preferences.DefaultChannels(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preference defaults: %w", err)
	}
	defer f.Close()
	return preferences.LoadDefaults(f)
}
