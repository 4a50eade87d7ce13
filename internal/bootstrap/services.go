package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	welcomer "github.com/tophhie/pds-welcomer"
	"github.com/tophhie/pds-welcomer/config"
	"github.com/tophhie/pds-welcomer/internal/adapters/acs"
	"github.com/tophhie/pds-welcomer/internal/adapters/directory"
	"github.com/tophhie/pds-welcomer/internal/adapters/secrets"
	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/data"
	"github.com/tophhie/pds-welcomer/internal/observability/notify/pagerduty"
	"github.com/tophhie/pds-welcomer/internal/observability/notify/slack"
	"github.com/tophhie/pds-welcomer/internal/observability/statsd"
	"github.com/tophhie/pds-welcomer/internal/service"
	"github.com/tophhie/pds-welcomer/internal/service/failurenotifier"
)

// shutdownWaitTimeout bounds how long shutdown waits for an in-flight run.
const shutdownWaitTimeout = 30 * time.Second

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// MetricsSink is nil when metrics are disabled.
	MetricsSink     statsd.Sink
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig

	metricsClient *statsd.Client
}

// Close releases the statsd connection, if any.
func (o ObservabilityContainer) Close() error {
	if o.metricsClient == nil {
		return nil
	}
	return o.metricsClient.Close()
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	out := ObservabilityContainer{
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
		NotifierConfig:  cfg.Notifications,
	}

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "welcomer",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.metricsClient = client
			out.MetricsSink = client
		}
	}

	return out
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// RecordStore is an open dispatch record store and the connection behind it.
type RecordStore struct {
	Records core.DispatchRecordAdmin
	Backend config.StoreBackend

	health func(context.Context) error
	close  func() error
}

// Health checks the backing connection.
func (s *RecordStore) Health(ctx context.Context) error {
	if s == nil || s.health == nil {
		return nil
	}
	return s.health(ctx)
}

// Close releases the backing connection.
func (s *RecordStore) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// StoreOptions controls OpenStore.
type StoreOptions struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// SkipMigrations overrides DB_RUN_MIGRATIONS_ON_START (admin commands migrate explicitly).
	SkipMigrations bool
}

// OpenStore connects the configured dispatch record backend.
func OpenStore(ctx context.Context, opts StoreOptions) (*RecordStore, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: opts.Logger}

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client, err := ConnectRedis(dbCfg)
		if err != nil {
			return nil, err
		}
		return newRedisStore(client, cfg.Store.KeyPrefix), nil
	case config.StoreBackendPostgres:
		db, err := ConnectDB(dbCfg)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrationsOnStart && !opts.SkipMigrations {
			if _, err := RunMigrations(ctx, db, opts.Logger); err != nil {
				return nil, errors.Join(err, db.Close())
			}
		}
		return newPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func newRedisStore(client redis.UniversalClient, prefix string) *RecordStore {
	repo := data.NewRedisDispatchRecordRepo(client, prefix)
	return &RecordStore{
		Records: repo,
		Backend: config.StoreBackendRedis,
		health:  repo.Health,
		close:   client.Close,
	}
}

func newPostgresStore(db *sql.DB) *RecordStore {
	repo := data.NewPostgresDispatchRecordRepo(db)
	return &RecordStore{
		Records: repo,
		Backend: config.StoreBackendPostgres,
		health:  repo.Health,
		close:   db.Close,
	}
}

// NewSecretProvider builds the configured run credential source.
//
//nolint:ireturn // provider selection happens at runtime.
func NewSecretProvider(cfg config.SecretsConfig, logger *slog.Logger) (core.SecretProvider, error) {
	dec, err := CreateDecryptor(cfg.EncryptionKey, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.SecretsProviderEnv:
		return secrets.NewEnvProvider(secrets.EnvProviderOptions{Decryptor: dec}), nil
	case config.SecretsProviderFile:
		return secrets.NewFileProvider(cfg.Dir, dec), nil
	default:
		return nil, fmt.Errorf("unsupported secrets provider %q", cfg.Provider)
	}
}

// LoadWelcomeTemplate reads path, or the embedded template when path is empty.
func LoadWelcomeTemplate(path string) (*service.WelcomeTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return service.NewWelcomeTemplate(welcomer.WelcomeTemplate)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read welcome template: %w", err)
	}
	return service.NewWelcomeTemplate(string(raw))
}

// DispatchDeps groups what BuildDispatchService needs beyond configuration.
type DispatchDeps struct {
	Config        *config.AppConfig
	Records       core.DispatchRecordRepository
	Secrets       core.SecretProvider
	Observability ObservabilityContainer
	Logger        *slog.Logger
	// Clock defaults to the wall clock.
	Clock core.Clock
}

// BuildDispatchService wires the adapters and the welcome dispatch service.
func BuildDispatchService(deps DispatchDeps) (*service.WelcomeDispatchService, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := deps.Config
	clock := deps.Clock
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}

	lister, err := directory.NewClient(directory.ClientOptions{
		ListURL:   cfg.Directory.ListURL,
		AdminURL:  cfg.Directory.AdminURL,
		AdminUser: cfg.Directory.AdminUser,
		Timeout:   cfg.Directory.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("directory client: %w", err)
	}

	sender, err := acs.NewClient(acs.ClientOptions{
		Endpoint:   cfg.Email.Endpoint,
		Sender:     cfg.Email.Sender,
		Subject:    cfg.Email.Subject,
		ReplyTo:    cfg.Email.ReplyTo,
		APIVersion: cfg.Email.APIVersion,
		Timeout:    cfg.Email.Timeout,
		Signer:     acs.NewSigner(clock),
	})
	if err != nil {
		return nil, fmt.Errorf("email client: %w", err)
	}

	policy := service.RetryNever
	if cfg.Dispatch.RetryFailed {
		policy = service.RetryFailed
	}
	gate, err := service.NewDispatchGate(service.DispatchGateOptions{
		Repo:   deps.Records,
		Clock:  clock,
		Policy: policy,
	})
	if err != nil {
		return nil, err
	}

	filter, err := service.NewAccountFilter(cfg.Dispatch.AllowedDIDs, cfg.Dispatch.Filter)
	if err != nil {
		return nil, err
	}

	tmpl, err := LoadWelcomeTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	opts := service.WelcomeDispatchServiceOptions{
		Lister:   lister,
		Resolver: lister,
		Sender:   sender,
		Gate:     gate,
		Secrets:  deps.Secrets,
		Template: tmpl,
		Credentials: service.CredentialNames{
			AdminPassword: cfg.Secrets.AdminPasswordName,
			AccessKey:     cfg.Secrets.AccessKeyName,
		},
		Config:  cfg.Dispatch,
		Filter:  filter,
		Clock:   clock,
		Logger:  deps.Logger,
		Metrics: deps.Observability.MetricsSink,
	}
	if deps.Observability.FailureNotifier != nil {
		opts.Notifier = deps.Observability.FailureNotifier
	}
	return service.NewWelcomeDispatchService(opts)
}

// Runtime is everything a process needs to run dispatches.
type Runtime struct {
	Config        *config.AppConfig
	Store         *RecordStore
	Observability ObservabilityContainer
	Dispatch      *service.WelcomeDispatchService
	Logger        *slog.Logger
}

// NewRuntime opens the store and builds the dispatch service.
func NewRuntime(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := OpenStore(ctx, StoreOptions{Config: cfg, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open dispatch store: %w", err)
	}

	provider, err := NewSecretProvider(cfg.Secrets, logger)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	obs := buildObservability(logger, cfg.Observability)
	svc, err := BuildDispatchService(DispatchDeps{
		Config:        cfg,
		Records:       store.Records,
		Secrets:       provider,
		Observability: obs,
		Logger:        logger,
	})
	if err != nil {
		return nil, errors.Join(err, obs.Close(), store.Close())
	}

	return &Runtime{
		Config:        cfg,
		Store:         store,
		Observability: obs,
		Dispatch:      svc,
		Logger:        logger,
	}, nil
}

// Close releases the store and metrics connections.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Observability.Close(), r.Store.Close())
}

// Runner is a blocking loop that returns nil once its context is canceled.
type Runner interface {
	Run(ctx context.Context) error
}

// RunWithShutdown runs r until SIGINT/SIGTERM or until it fails.
func RunWithShutdown(ctx context.Context, r Runner, logger *slog.Logger) error {
	if r == nil {
		return errors.New("runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runUntilDone(sigCtx, r, logger, shutdownWaitTimeout)
}

func runUntilDone(ctx context.Context, r Runner, logger *slog.Logger, wait time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("dispatcher stopped", "error", err)
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down dispatcher...")
	}

	select {
	case err := <-errCh:
		logger.Info("dispatcher stopped")
		return err
	case <-time.After(wait):
		logger.Warn("timeout waiting for dispatcher to stop")
		return errors.New("timeout waiting for dispatcher to stop")
	}
}
