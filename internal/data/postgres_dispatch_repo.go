package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

// PostgresDispatchRecordRepo stores dispatch records in the welcome_dispatches table.
type PostgresDispatchRecordRepo struct {
	db *sql.DB
}

// NewPostgresDispatchRecordRepo creates a repo over an open pgx-backed *sql.DB.
func NewPostgresDispatchRecordRepo(db *sql.DB) *PostgresDispatchRecordRepo {
	return &PostgresDispatchRecordRepo{db: db}
}

// Get returns the record for did, or nil if none exists.
func (r *PostgresDispatchRecordRepo) Get(ctx context.Context, did string) (*model.DispatchRecord, error) {
	if did == "" {
		return nil, ErrDIDRequired
	}

	const query = `SELECT status, reason, dispatched_at FROM welcome_dispatches WHERE did = $1`

	var (
		status string
		reason sql.NullString
		at     time.Time
	)
	err := r.db.QueryRowContext(ctx, query, did).Scan(&status, &reason, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch record: %w", apperrors.MapDBError(err))
	}

	parsed, err := model.ParseDispatchStatus(status)
	if err != nil {
		return nil, err
	}
	return &model.DispatchRecord{Status: parsed, At: at.UTC(), Reason: reason.String}, nil
}

// Put creates or overwrites the record for did.
func (r *PostgresDispatchRecordRepo) Put(ctx context.Context, did string, record model.DispatchRecord) error {
	if did == "" {
		return ErrDIDRequired
	}
	if !record.Status.Valid() {
		return apperrors.Validationf("invalid dispatch status %q", record.Status)
	}

	const query = `
		INSERT INTO welcome_dispatches (did, status, reason, dispatched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (did) DO UPDATE
		SET status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			dispatched_at = EXCLUDED.dispatched_at,
			updated_at = now()`

	reason := sql.NullString{String: record.Reason, Valid: record.Reason != ""}
	if _, err := r.db.ExecContext(ctx, query, did, string(record.Status), reason, record.At); err != nil {
		return fmt.Errorf("put dispatch record: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Delete removes the record for did and reports whether one existed.
func (r *PostgresDispatchRecordRepo) Delete(ctx context.Context, did string) (bool, error) {
	if did == "" {
		return false, ErrDIDRequired
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM welcome_dispatches WHERE did = $1`, did)
	if err != nil {
		return false, fmt.Errorf("delete dispatch record: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete dispatch record: %w", err)
	}
	return n > 0, nil
}

// List returns records newest first, optionally filtered by status.
func (r *PostgresDispatchRecordRepo) List(
	ctx context.Context,
	opts model.DispatchRecordListOptions,
) ([]model.DispatchRecordEntry, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT did, status, reason, dispatched_at FROM welcome_dispatches`)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		fmt.Fprintf(&sb, " WHERE status = $%d", len(args))
	}
	sb.WriteString(" ORDER BY dispatched_at DESC, did")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list dispatch records: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var entries []model.DispatchRecordEntry
	for rows.Next() {
		var (
			entry  model.DispatchRecordEntry
			status string
			reason sql.NullString
		)
		if err := rows.Scan(&entry.DID, &status, &reason, &entry.Record.At); err != nil {
			return nil, fmt.Errorf("scan dispatch record: %w", err)
		}
		entry.Record.Status = model.DispatchStatus(status)
		entry.Record.Reason = reason.String
		entry.Record.At = entry.Record.At.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatch records: %w", err)
	}
	return entries, nil
}

// Health pings the database.
func (r *PostgresDispatchRecordRepo) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
