package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_NilError(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), wantCode: ErrCodeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			assert.Equal(t, tt.wantCode, GetCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(fmt.Errorf("scan: %w", pgx.ErrNoRows))
	assert.True(t, IsNotFound(err))
}

func TestMapDBError_PgErrors(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantCode  ErrorCode
		wantField string
		wantMsg   string
	}{
		{
			name: "unique violation parsed from detail",
			pgErr: &pgconn.PgError{
				Code:      pgerrcode.UniqueViolation,
				TableName: "welcome_dispatches",
				Detail:    "Key (did)=(did:plc:abc) already exists.",
			},
			wantCode:  ErrCodeConflict,
			wantField: "did",
			wantMsg:   "dispatch record already exists",
		},
		{
			name: "check violation on status",
			pgErr: &pgconn.PgError{
				Code:           pgerrcode.CheckViolation,
				TableName:      "welcome_dispatches",
				ConstraintName: "welcome_dispatches_status_check",
			},
			wantCode: ErrCodeValidation,
			wantMsg:  "dispatch record violates constraint welcome_dispatches_status_check",
		},
		{
			name: "not null",
			pgErr: &pgconn.PgError{
				Code:       pgerrcode.NotNullViolation,
				TableName:  "welcome_dispatches",
				ColumnName: "dispatched_at",
			},
			wantCode:  ErrCodeValidation,
			wantField: "dispatched_at",
			wantMsg:   "dispatch record is missing a required field",
		},
		{
			name:     "undefined table",
			pgErr:    &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "welcome_dispatches" does not exist`},
			wantCode: ErrCodeInternal,
			wantMsg:  `schema not migrated: relation "welcome_dispatches" does not exist`,
		},
		{
			name:     "unknown",
			pgErr:    &pgconn.PgError{Code: pgerrcode.DiskFull},
			wantCode: ErrCodeInternal,
			wantMsg:  "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			assert.Equal(t, tt.wantCode, GetCode(err))
			assert.Equal(t, tt.wantField, GetField(err))

			var appErr *AppError
			if assert.True(t, errors.As(err, &appErr)) {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	original := errors.New("boom")
	assert.Same(t, original, MapDBError(original))
}

func TestDescribeTable(t *testing.T) {
	assert.Equal(t, "dispatch record", describeTable(" Welcome_Dispatches "))
	assert.Equal(t, "row", describeTable(""))
	assert.Equal(t, "other table", describeTable("other_table"))
}
