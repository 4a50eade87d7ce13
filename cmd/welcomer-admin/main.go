package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/tophhie/pds-welcomer/config"
	"github.com/tophhie/pds-welcomer/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdout io.Writer
	Stdin  io.Reader

	// openStore defaults to bootstrap.OpenStore; tests swap in an in-memory store.
	openStore func(ctx context.Context, cmdCtx *commandContext) (*bootstrap.RecordStore, error)
}

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(true)
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Apply the Postgres dispatch record schema",
			run:         runMigrations,
		},
		"run-once": {
			name:        "run-once",
			description: "Run a single welcome dispatch pass and print its summary",
			run:         runOnce,
		},
		"list-records": {
			name:        "list-records",
			description: "List dispatch records, newest first",
			run:         runListRecords,
		},
		"show-record": {
			name:        "show-record",
			description: "Show the dispatch record for one DID",
			run:         runShowRecord,
		},
		"clear-record": {
			name:        "clear-record",
			description: "Delete the dispatch record for one DID so it is sent again",
			run:         runClearRecord,
		},
		"encrypt-secret": {
			name:        "encrypt-secret",
			description: "Encrypt a secret value with SECRETS_ENCRYPTION_KEY",
			run:         runEncryptSecret,
		},
		"render-template": {
			name:        "render-template",
			description: "Render the welcome template for a sample account",
			run:         runRenderTemplate,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: welcomer-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func (cmdCtx *commandContext) store(ctx context.Context) (*bootstrap.RecordStore, error) {
	if cmdCtx.openStore != nil {
		return cmdCtx.openStore(ctx, cmdCtx)
	}
	cfg := cmdCtx.Config
	return bootstrap.OpenStore(ctx, bootstrap.StoreOptions{
		Config:         &cfg,
		Logger:         cmdCtx.Logger,
		SkipMigrations: true,
	})
}

func (cmdCtx *commandContext) closeStore(store *bootstrap.RecordStore) {
	if err := store.Close(); err != nil && cmdCtx.Logger != nil {
		cmdCtx.Logger.Warn("store close failed", "error", err)
	}
}

type confirmOptions struct {
	Action string
	Target string
	DryRun bool
	Yes    bool
}

func confirmAction(cmdCtx *commandContext, opts confirmOptions) error {
	if opts.DryRun || opts.Yes {
		return nil
	}

	if err := writef(cmdCtx.Stdout, "About to %s for %s.\n", opts.Action, opts.Target); err != nil {
		return fmt.Errorf("print confirmation message: %w", err)
	}
	if err := write(cmdCtx.Stdout, "Continue? [y/N]: "); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	reader := bufio.NewReader(cmdCtx.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		if writeErr := writef(cmdCtx.Stdout, "\nFailed to read confirmation input: %v\n", err); writeErr != nil {
			return fmt.Errorf("aborted by user: report write failed: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
