package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"mezgeb/internal/core/apperror"
)

// PostgreSQL error codes that matter for classification.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"
	codeConnectionClass      = "08" // class 08: connection exceptions
)

// ClassifyError maps a driver error onto the application error taxonomy.
//
// Transient errors (serialization failures, deadlocks, dropped
// connections) are marked retryable so callers like the number
// allocator can retry them. Unique violations are never retryable:
// under the UPSERT allocation scheme a duplicate number means a
// locking bug, and retrying would only mask it.
func ClassifyError(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewTransientStore(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return apperror.NewDuplicate(resource, "key", pgErr.ConstraintName).WithCause(err)
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeAdminShutdown:
			return apperror.NewTransientStore(err)
		case strings.HasPrefix(pgErr.Code, codeConnectionClass):
			return apperror.NewTransientStore(err)
		}
		return apperror.NewInternal(err).WithDetail("pg_code", pgErr.Code)
	}

	if pgconn.SafeToRetry(err) {
		return apperror.NewTransientStore(err)
	}

	return apperror.NewInternal(err)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation, optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
