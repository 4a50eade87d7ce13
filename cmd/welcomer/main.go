package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tophhie/pds-welcomer/config"
	"github.com/tophhie/pds-welcomer/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger := bootstrap.InitLogger(cfg.IsDev)
	logStartupInfo(ctx, logger, &cfg)

	rt, err := bootstrap.NewRuntime(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close runtime failed", "error", cerr)
		}
	}()

	return bootstrap.RunWithShutdown(ctx, rt.Dispatch, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting welcome dispatcher",
		"store_backend", cfg.Store.Backend,
		"secrets_provider", cfg.Secrets.Provider,
		"interval", cfg.Dispatch.Interval,
		"run_on_start", cfg.Dispatch.RunOnStart,
		"retry_failed", cfg.Dispatch.RetryFailed,
		"allowed_dids", len(cfg.Dispatch.AllowedDIDs),
		"filter", cfg.Dispatch.Filter != "",
		"custom_template", cfg.TemplatePath != "",
		"metrics_enabled", cfg.Observability.Metrics.IsEnabled(),
		"notifications_enabled", cfg.Observability.Notifications.Enabled)
}
