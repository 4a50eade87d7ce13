package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tophhie/pds-welcomer/config"
	"github.com/tophhie/pds-welcomer/internal/core"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
	obserrors "github.com/tophhie/pds-welcomer/internal/observability/errors"
	"github.com/tophhie/pds-welcomer/internal/observability/metrics"
	"github.com/tophhie/pds-welcomer/internal/observability/notify"
	"github.com/tophhie/pds-welcomer/internal/observability/statsd"
)

// Run stages reported on failure notifications.
const (
	StageListing     = "listing"
	StageCredentials = "credentials"
	StageAccounts    = "accounts"
)

// RunFailureNotifier receives run failures. failurenotifier.Service implements it.
type RunFailureNotifier interface {
	NotifyRunFailure(ctx context.Context, payload notify.RunFailurePayload)
}

// CredentialNames names the two secrets fetched at the start of every run.
type CredentialNames struct {
	AdminPassword string
	AccessKey     string
}

// WelcomeDispatchServiceOptions groups dependencies for WelcomeDispatchService.
type WelcomeDispatchServiceOptions struct {
	Lister      core.AccountLister    // Required: listing API client
	Resolver    core.IdentityResolver // Required: admin identity API client
	Sender      core.EmailSender      // Required: email provider client
	Gate        *DispatchGate         // Required: idempotency gate
	Secrets     core.SecretProvider   // Required: run credential source
	Template    *WelcomeTemplate      // Required: welcome email body
	Credentials CredentialNames       // Required: secret names for the provider
	Config      config.DispatchConfig // Optional: scheduling for Run
	Filter      AccountFilter         // Optional: defaults to AllowAll
	Clock       core.Clock            // Optional: defaults to the system clock
	Logger      *slog.Logger          // Optional: structured logger
	Metrics     statsd.Sink           // Optional: metrics sink (StatsD-compatible)
	Notifier    RunFailureNotifier    // Optional: failure fan-out
}

// WelcomeDispatchService sends one welcome email to every active account that has
// not been notified yet.
//
// A run lists accounts, fetches both credentials, then walks the listing in order.
// Each account ends in exactly one model.AccountOutcome. Failures for one account are
// recorded and logged but never stop the run; only listing and credential failures do.
type WelcomeDispatchService struct {
	lister   core.AccountLister
	resolver core.IdentityResolver
	sender   core.EmailSender
	gate     *DispatchGate
	secrets  core.SecretProvider
	template *WelcomeTemplate
	names    CredentialNames
	config   config.DispatchConfig
	filter   AccountFilter
	clock    core.Clock
	logger   *slog.Logger
	metrics  statsd.Sink
	notifier RunFailureNotifier
}

// NewWelcomeDispatchService constructs a new WelcomeDispatchService.
func NewWelcomeDispatchService(opts WelcomeDispatchServiceOptions) (*WelcomeDispatchService, error) {
	switch {
	case opts.Lister == nil:
		return nil, errors.New("AccountLister is required")
	case opts.Resolver == nil:
		return nil, errors.New("IdentityResolver is required")
	case opts.Sender == nil:
		return nil, errors.New("EmailSender is required")
	case opts.Gate == nil:
		return nil, errors.New("DispatchGate is required")
	case opts.Secrets == nil:
		return nil, errors.New("SecretProvider is required")
	case opts.Template == nil:
		return nil, errors.New("WelcomeTemplate is required")
	case strings.TrimSpace(opts.Credentials.AdminPassword) == "" || strings.TrimSpace(opts.Credentials.AccessKey) == "":
		return nil, errors.New("credential names are required")
	}

	filter := opts.Filter
	if filter == nil {
		filter = AllowAll
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "welcome_dispatch")

	if missing := opts.Template.MissingTokens(); len(missing) > 0 {
		logger.Warn("welcome template is missing placeholders", "tokens", missing)
	}

	return &WelcomeDispatchService{
		lister:   opts.Lister,
		resolver: opts.Resolver,
		sender:   opts.Sender,
		gate:     opts.Gate,
		secrets:  opts.Secrets,
		template: opts.Template,
		names:    opts.Credentials,
		config:   opts.Config,
		filter:   filter,
		clock:    clock,
		logger:   logger,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
	}, nil
}

// MustNewWelcomeDispatchService constructs a new WelcomeDispatchService and panics on error.
func MustNewWelcomeDispatchService(opts WelcomeDispatchServiceOptions) *WelcomeDispatchService {
	svc, err := NewWelcomeDispatchService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create WelcomeDispatchService: %v", err))
	}
	return svc
}

type runCredentials struct {
	adminPassword string
	accessKey     string
}

// RunOnce performs a single dispatch run. The returned summary is never nil.
// The error is non-nil only when the run was aborted: listing failure, credential
// failure, or context cancellation.
func (s *WelcomeDispatchService) RunOnce(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: s.clock.Now().UTC(),
	}
	logger := s.logger.With("run_id", summary.RunID)
	logger.InfoContext(ctx, "dispatch run started")

	listing, err := s.lister.ListAccounts(ctx)
	if err != nil {
		return summary, s.abort(ctx, logger, summary, StageListing, err)
	}
	summary.Listed = len(listing.Repos)
	logger.InfoContext(ctx, "accounts listed",
		"total", listing.Total,
		"active", listing.Active,
		"inactive", listing.Inactive,
		"repos", len(listing.Repos),
	)

	creds, err := s.fetchCredentials(ctx)
	if err != nil {
		return summary, s.abort(ctx, logger, summary, StageCredentials, err)
	}

	for _, ref := range listing.Repos {
		if ctx.Err() != nil {
			return summary, s.abort(ctx, logger, summary, StageAccounts, ctx.Err())
		}
		summary.Record(s.processAccount(ctx, logger, ref, creds))
	}

	summary.Duration = s.clock.Now().Sub(summary.StartedAt)
	metrics.EmitDispatchRun(s.metrics, metrics.RunMetric{Summary: summary})
	logger.InfoContext(ctx, "dispatch run finished",
		"listed", summary.Listed,
		"outcomes", summary.Outcomes,
		"duration", summary.Duration,
	)

	s.notifyAccountFailures(ctx, summary)
	return summary, nil
}

// fetchCredentials reads both run credentials concurrently; both must succeed.
func (s *WelcomeDispatchService) fetchCredentials(ctx context.Context) (runCredentials, error) {
	var creds runCredentials
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.fetchCredential(gctx, s.names.AdminPassword)
		creds.adminPassword = v
		return err
	})
	g.Go(func() error {
		v, err := s.fetchCredential(gctx, s.names.AccessKey)
		creds.accessKey = v
		return err
	})
	if err := g.Wait(); err != nil {
		return runCredentials{}, err
	}
	return creds, nil
}

func (s *WelcomeDispatchService) fetchCredential(ctx context.Context, name string) (string, error) {
	v, err := s.secrets.GetSecret(ctx, name)
	if err != nil {
		return "", &apperrors.CredentialError{Name: name, Cause: err}
	}
	if strings.TrimSpace(v) == "" {
		return "", &apperrors.CredentialError{Name: name, Cause: errors.New("empty value")}
	}
	return v, nil
}

func (s *WelcomeDispatchService) processAccount(
	ctx context.Context,
	logger *slog.Logger,
	ref model.AccountRef,
	creds runCredentials,
) model.AccountOutcome {
	log := logger.With("did", ref.DID)

	if !s.filter(ref) {
		log.DebugContext(ctx, "account excluded by filter")
		return s.finish(model.AccountOutcomeSkippedFiltered, 0, nil)
	}
	if !ref.Active {
		log.DebugContext(ctx, "skipping inactive account")
		return s.finish(model.AccountOutcomeSkippedInactive, 0, nil)
	}

	notified, err := s.gate.HasBeenNotified(ctx, ref.DID)
	if err != nil {
		log.ErrorContext(ctx, "dispatch record lookup failed", "error", err)
		return s.finish(model.AccountOutcomeStoreError, 0, err)
	}
	if notified {
		log.DebugContext(ctx, "account already notified")
		return s.finish(model.AccountOutcomeSkippedAlreadyNotified, 0, nil)
	}

	identity, err := s.resolver.ResolveIdentity(ctx, ref.DID, creds.adminPassword)
	if err == nil && strings.TrimSpace(identity.Email) == "" {
		err = fmt.Errorf("resolve %s: account has no email address", ref.DID)
	}
	if err != nil {
		log.WarnContext(ctx, "account resolution failed", "error", err)
		return s.recordFailure(ctx, log, ref.DID, err, model.AccountOutcomeResolutionFailed, 0)
	}

	log = log.With("handle", identity.Handle)
	start := s.clock.Now()
	err = s.sender.Send(ctx, core.EmailSendRequest{
		To:        identity.Email,
		HTML:      s.template.Render(*identity),
		AccessKey: creds.accessKey,
	})
	elapsed := s.clock.Now().Sub(start)

	if err != nil {
		log.WarnContext(ctx, "welcome email delivery failed", "error", err, "error_class", obserrors.Classify(err))
		return s.recordFailure(ctx, log, ref.DID, err, model.AccountOutcomeDeliveryFailed, elapsed)
	}

	if recErr := s.gate.RecordOutcome(ctx, ref.DID, model.DispatchStatusSent, ""); recErr != nil {
		// The email went out; without a record the account will be emailed again next run.
		log.ErrorContext(ctx, "welcome email sent but not recorded", "error", recErr)
		return s.finish(model.AccountOutcomeStoreError, elapsed, recErr)
	}
	log.InfoContext(ctx, "welcome email sent")
	return s.finish(model.AccountOutcomeSent, elapsed, nil)
}

// recordFailure persists a failed record with cause as the reason. An interrupted run
// leaves the account unrecorded so the next run picks it up again.
func (s *WelcomeDispatchService) recordFailure(
	ctx context.Context,
	log *slog.Logger,
	did string,
	cause error,
	outcome model.AccountOutcome,
	elapsed time.Duration,
) model.AccountOutcome {
	if ctx.Err() != nil {
		return s.finish(outcome, elapsed, cause)
	}
	if err := s.gate.RecordOutcome(ctx, did, model.DispatchStatusFailed, cause.Error()); err != nil {
		log.ErrorContext(ctx, "failed to record dispatch failure", "error", err, "outcome", outcome)
		return s.finish(model.AccountOutcomeStoreError, elapsed, err)
	}
	return s.finish(outcome, elapsed, cause)
}

func (s *WelcomeDispatchService) finish(outcome model.AccountOutcome, elapsed time.Duration, err error) model.AccountOutcome {
	metrics.EmitAccountOutcome(s.metrics, metrics.AccountMetric{Outcome: outcome, Duration: elapsed, Err: err})
	return outcome
}

func (s *WelcomeDispatchService) abort(
	ctx context.Context,
	logger *slog.Logger,
	summary *model.RunSummary,
	stage string,
	err error,
) error {
	summary.Duration = s.clock.Now().Sub(summary.StartedAt)
	metrics.EmitDispatchRun(s.metrics, metrics.RunMetric{Summary: summary, Err: err})

	if ctx.Err() != nil && isContextCancellation(err) {
		logger.InfoContext(ctx, "dispatch run interrupted", "stage", stage, "reason", err)
		return err
	}

	logger.ErrorContext(ctx, "dispatch run aborted",
		"stage", stage,
		"error", err,
		"error_class", obserrors.Classify(err),
	)
	s.notify(ctx, notify.RunFailurePayload{
		RunID:      summary.RunID,
		Stage:      stage,
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		Listed:     summary.Listed,
		OccurredAt: s.clock.Now(),
	})
	return err
}

// notifyAccountFailures raises a warning when a completed run left accounts failed.
func (s *WelcomeDispatchService) notifyAccountFailures(ctx context.Context, summary *model.RunSummary) {
	failed := summary.Count(model.AccountOutcomeResolutionFailed) +
		summary.Count(model.AccountOutcomeDeliveryFailed) +
		summary.Count(model.AccountOutcomeStoreError)
	if failed == 0 {
		return
	}
	s.notify(ctx, notify.RunFailurePayload{
		RunID:      summary.RunID,
		Stage:      StageAccounts,
		Error:      fmt.Sprintf("%d of %d accounts failed", failed, summary.Listed),
		Severity:   notify.SeverityWarning,
		Listed:     summary.Listed,
		Failed:     failed,
		OccurredAt: s.clock.Now(),
		Metadata: map[string]string{
			"resolution_failed": fmt.Sprint(summary.Count(model.AccountOutcomeResolutionFailed)),
			"delivery_failed":   fmt.Sprint(summary.Count(model.AccountOutcomeDeliveryFailed)),
			"store_error":       fmt.Sprint(summary.Count(model.AccountOutcomeStoreError)),
		},
	})
}

func (s *WelcomeDispatchService) notify(ctx context.Context, payload notify.RunFailurePayload) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyRunFailure(ctx, payload)
}

// Run starts the dispatch loop and runs until the context is cancelled.
// Runs never overlap: ticks that arrive while a run is in progress are dropped.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *WelcomeDispatchService) Run(ctx context.Context) error {
	interval := s.config.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	s.logger.InfoContext(ctx, "starting welcome dispatch service",
		"interval", interval,
		"run_on_start", s.config.RunOnStart,
		"retry_policy", s.gate.Policy(),
	)

	if s.config.RunOnStart {
		s.runScheduled(ctx, "initial run")
	} else {
		// Spread instances that start together.
		s.waitWithJitter(ctx, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "welcome dispatch service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.runScheduled(ctx, "scheduled run")
		}
	}
}

func (s *WelcomeDispatchService) runScheduled(ctx context.Context, label string) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, label+" failed", "error", err)
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *WelcomeDispatchService) waitWithJitter(ctx context.Context, interval time.Duration) {
	maxJitter := int64(interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
