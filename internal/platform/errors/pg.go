package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the mapping cares about
const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgNotNullViolation          = "23502"
	pgCheckViolation            = "23514"
	pgStringDataRightTruncation = "22001"
	pgInvalidTextRepresentation = "22P02"
	pgSerializationFailure      = "40001"
	pgDeadlockDetected          = "40P01"
	pgLockNotAvailable          = "55P03"
	pgReadOnlySQLTransaction    = "25006"
	pgCannotConnectNow          = "57P03"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// dbCode classifies a Postgres error. Anything that is not a *pgconn.PgError is ErrorCodeDB
func dbCode(err error) ErrorCode {
	pgErr, ok := pgError(err)
	if !ok {
		return ErrorCodeDB
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrorCodeDuplicateKey
	case pgForeignKeyViolation, pgStringDataRightTruncation, pgInvalidTextRepresentation:
		return ErrorCodeInvalidArgument
	case pgNotNullViolation, pgCheckViolation:
		return ErrorCodeValidation
	case pgReadOnlySQLTransaction, pgCannotConnectNow:
		return ErrorCodeUnavailable
	default:
		return ErrorCodeDB
	}
}

// FromPostgres wraps a database error with a mapped code. Errors that already carry a code,
// such as ErrNotFound from a single row lookup, keep it. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, isPg := pgError(err); !isPg {
		if e, ok := As(err); ok {
			return Wrap(err, e.code, msg)
		}
	}
	return Wrap(err, dbCode(err), msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error is transient contention worth rerunning the
// transaction for. Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(Root(err).Error())
	for _, frag := range retryableText {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}

// retryableText matches driver errors that arrive without a SQLSTATE, e.g. on commit
var retryableText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}
