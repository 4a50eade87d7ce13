package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

const defaultListLimit = 50

type listRecordsOptions struct {
	Status  string
	Limit   int
	RawJSON bool
}

type recordOptions struct {
	DID     string
	RawJSON bool
	DryRun  bool
	Yes     bool
}

func parseListRecordsFlags(args []string) (listRecordsOptions, error) {
	fs := flag.NewFlagSet("list-records", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listRecordsOptions
	fs.StringVar(&opts.Status, "status", "", "Only show records with this status (sent, failed)")
	fs.IntVar(&opts.Limit, "limit", defaultListLimit, "Maximum records to show (0 for all)")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print records as JSON")

	if err := fs.Parse(args); err != nil {
		return listRecordsOptions{}, err
	}

	opts.Status = strings.ToLower(strings.TrimSpace(opts.Status))
	if opts.Status != "" && !model.DispatchStatus(opts.Status).Valid() {
		return listRecordsOptions{}, fmt.Errorf("--status must be sent or failed, got %q", opts.Status)
	}
	if opts.Limit < 0 {
		return listRecordsOptions{}, errors.New("--limit must be zero or greater")
	}
	return opts, nil
}

func parseRecordFlags(name string, args []string, destructive bool) (recordOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts recordOptions
	fs.StringVar(&opts.DID, "did", "", "Account DID (required)")
	if destructive {
		fs.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without deleting")
		fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	} else {
		fs.BoolVar(&opts.RawJSON, "json", false, "Print the record as JSON")
	}

	if err := fs.Parse(args); err != nil {
		return recordOptions{}, err
	}

	opts.DID = strings.TrimSpace(opts.DID)
	if opts.DID == "" {
		return recordOptions{}, errors.New("--did is required")
	}
	return opts, nil
}

func runListRecords(cmdCtx *commandContext, args []string) error {
	opts, err := parseListRecordsFlags(args)
	if err != nil {
		return err
	}

	store, err := cmdCtx.store(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("open dispatch store: %w", err)
	}
	defer cmdCtx.closeStore(store)

	entries, err := store.Records.List(cmdCtx.Ctx, model.DispatchRecordListOptions{
		Status: model.DispatchStatus(opts.Status),
		Limit:  opts.Limit,
	})
	if err != nil {
		return fmt.Errorf("list dispatch records: %w", err)
	}

	if opts.RawJSON {
		return printJSON(cmdCtx.Stdout, entries)
	}
	return printRecordTable(cmdCtx.Stdout, entries)
}

func runShowRecord(cmdCtx *commandContext, args []string) error {
	opts, err := parseRecordFlags("show-record", args, false)
	if err != nil {
		return err
	}

	store, err := cmdCtx.store(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("open dispatch store: %w", err)
	}
	defer cmdCtx.closeStore(store)

	rec, err := store.Records.Get(cmdCtx.Ctx, opts.DID)
	if err != nil {
		return fmt.Errorf("get dispatch record: %w", err)
	}
	if rec == nil {
		return writef(cmdCtx.Stdout, "No dispatch record for %s.\n", opts.DID)
	}

	entry := model.DispatchRecordEntry{DID: opts.DID, Record: *rec}
	if opts.RawJSON {
		return printJSON(cmdCtx.Stdout, entry)
	}
	return printRecordTable(cmdCtx.Stdout, []model.DispatchRecordEntry{entry})
}

func runClearRecord(cmdCtx *commandContext, args []string) error {
	opts, err := parseRecordFlags("clear-record", args, true)
	if err != nil {
		return err
	}

	store, err := cmdCtx.store(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("open dispatch store: %w", err)
	}
	defer cmdCtx.closeStore(store)

	rec, err := store.Records.Get(cmdCtx.Ctx, opts.DID)
	if err != nil {
		return fmt.Errorf("get dispatch record: %w", err)
	}
	if rec == nil {
		return writef(cmdCtx.Stdout, "No dispatch record for %s; nothing to clear.\n", opts.DID)
	}

	if err := confirmAction(cmdCtx, confirmOptions{
		Action: fmt.Sprintf("clear the %s dispatch record (the welcome email will be sent again)", rec.Status),
		Target: opts.DID,
		DryRun: opts.DryRun,
		Yes:    opts.Yes,
	}); err != nil {
		return err
	}

	if opts.DryRun {
		return writef(cmdCtx.Stdout, "Dry run: would clear %s record for %s.\n", rec.Status, opts.DID)
	}

	deleted, err := store.Records.Delete(cmdCtx.Ctx, opts.DID)
	if err != nil {
		return fmt.Errorf("delete dispatch record: %w", err)
	}
	if !deleted {
		return writef(cmdCtx.Stdout, "Record for %s was already gone.\n", opts.DID)
	}

	cmdCtx.Logger.InfoContext(cmdCtx.Ctx, "dispatch record cleared", "did", opts.DID, "status", rec.Status)
	return writef(cmdCtx.Stdout, "Cleared %s record for %s.\n", rec.Status, opts.DID)
}

func printRecordTable(w io.Writer, entries []model.DispatchRecordEntry) error {
	if len(entries) == 0 {
		return writeln(w, "(no dispatch records)")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "DID\tSTATUS\tAT\tREASON"); err != nil {
		return fmt.Errorf("write record header row: %w", err)
	}
	for _, e := range entries {
		reason := e.Record.Reason
		if reason == "" {
			reason = "-"
		}
		if err := writef(
			tw,
			"%s\t%s\t%s\t%s\n",
			e.DID,
			e.Record.Status,
			e.Record.At.UTC().Format(time.RFC3339),
			reason,
		); err != nil {
			return fmt.Errorf("write record row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush record table: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
