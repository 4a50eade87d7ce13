package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/tophhie/pds-welcomer/internal/bootstrap"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
	"github.com/tophhie/pds-welcomer/internal/util"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultRunTimeout       = 30 * time.Minute
)

// summaryOrder is the order outcomes are printed in.
var summaryOrder = []model.AccountOutcome{
	model.AccountOutcomeSent,
	model.AccountOutcomeSkippedAlreadyNotified,
	model.AccountOutcomeSkippedInactive,
	model.AccountOutcomeSkippedFiltered,
	model.AccountOutcomeResolutionFailed,
	model.AccountOutcomeDeliveryFailed,
	model.AccountOutcomeStoreError,
}

type timeoutOptions struct {
	Timeout time.Duration
}

type renderOptions struct {
	Handle string
	DID    string
}

func parseTimeoutFlags(name string, def time.Duration, args []string) (timeoutOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := timeoutOptions{Timeout: def}
	fs.DurationVar(&opts.Timeout, "timeout", def, "Maximum duration to wait for the command to complete")

	if err := fs.Parse(args); err != nil {
		return timeoutOptions{}, err
	}
	if opts.Timeout <= 0 {
		return timeoutOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseRenderFlags(args []string) (renderOptions, error) {
	fs := flag.NewFlagSet("render-template", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := renderOptions{}
	fs.StringVar(&opts.Handle, "handle", "new-user.tophhie.social", "Account handle to render")
	fs.StringVar(&opts.DID, "did", "did:plc:example", "Account DID to render")

	if err := fs.Parse(args); err != nil {
		return renderOptions{}, err
	}
	return opts, nil
}

func withSignalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("migrate", defaultMigrationTimeout, args)
	if err != nil {
		return err
	}

	ctx, cancel := withSignalTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")

	applied, err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return writeln(cmdCtx.Stdout, "Schema is up to date.")
	}
	return writef(cmdCtx.Stdout, "Applied migrations: %s\n", strings.Join(applied, ", "))
}

func runOnce(cmdCtx *commandContext, args []string) error {
	opts, err := parseTimeoutFlags("run-once", defaultRunTimeout, args)
	if err != nil {
		return err
	}

	ctx, cancel := withSignalTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	cfg := cmdCtx.Config
	rt, err := bootstrap.NewRuntime(ctx, &cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("runtime close failed", "error", closeErr)
		}
	}()

	summary, runErr := rt.Dispatch.RunOnce(ctx)
	if err := printRunSummary(cmdCtx.Stdout, summary); err != nil {
		return err
	}
	return runErr
}

func printRunSummary(w io.Writer, summary *model.RunSummary) error {
	if summary == nil {
		return nil
	}
	if err := writef(w, "Run %s: %d accounts listed in %s\n",
		summary.RunID, summary.Listed, util.FormatDuration(summary.Duration)); err != nil {
		return fmt.Errorf("write run header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "Outcome\tCount"); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, outcome := range summaryOrder {
		if err := writef(tw, "%s\t%d\n", outcome, summary.Count(outcome)); err != nil {
			return fmt.Errorf("write outcome %s: %w", outcome, err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush run summary: %w", err)
	}
	return nil
}

func runEncryptSecret(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("encrypt-secret", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	value := fs.String("value", "", "Plaintext to encrypt (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key := cmdCtx.Config.Secrets.EncryptionKey
	if strings.TrimSpace(key) == "" {
		return errors.New("SECRETS_ENCRYPTION_KEY is not set")
	}

	plain := *value
	if plain == "" {
		line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read secret from stdin: %w", err)
		}
		plain = strings.TrimRight(line, "\r\n")
	}
	if plain == "" {
		return errors.New("nothing to encrypt")
	}

	enc, err := bootstrap.CreateEncryptor(key)
	if err != nil {
		return err
	}
	ciphertext, err := enc.Encrypt([]byte(plain))
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}
	return writeln(cmdCtx.Stdout, ciphertext)
}

func runRenderTemplate(cmdCtx *commandContext, args []string) error {
	opts, err := parseRenderFlags(args)
	if err != nil {
		return err
	}

	tmpl, err := bootstrap.LoadWelcomeTemplate(cmdCtx.Config.TemplatePath)
	if err != nil {
		return err
	}
	if missing := tmpl.MissingTokens(); len(missing) > 0 {
		cmdCtx.Logger.Warn("welcome template is missing placeholders", "missing", missing)
	}

	return write(cmdCtx.Stdout, tmpl.Render(model.ContactIdentity{
		DID:    opts.DID,
		Handle: opts.Handle,
	}))
}
