package errors

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - NOT NULL and CHECK violations → Validation
//   - context timeouts/cancellations → Timeout/Canceled
//
// Errors that are not recognized are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		appErr := Wrap(pgErr, ErrCodeConflict, "This value already exists. Please choose a different one.")
		appErr.Field = pgErr.ColumnName
		if appErr.Field == "" {
			if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				appErr.Field = m[1]
			}
		}
		return appErr
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		if pgErr.ColumnName != "" {
			appErr := Wrap(pgErr, ErrCodeValidation, "This field is required.")
			appErr.Field = pgErr.ColumnName
			return appErr
		}
		return Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}
