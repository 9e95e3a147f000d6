package errors

// Postgres classification for pgx errors

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE values with a dedicated mapping
const (
	sqlUniqueViolation     = "23505"
	sqlForeignKeyViolation = "23503"
	sqlNotNullViolation    = "23502"
	sqlCheckViolation      = "23514"
	sqlInvalidText         = "22P02"
	sqlInvalidDatetime     = "22007"
	sqlDatetimeOverflow    = "22008"
	sqlBadCopyFile         = "22P04"

	sqlSerializationFailure = "40001"
	sqlDeadlockDetected     = "40P01"
	sqlLockNotAvailable     = "55P03"
	sqlQueryCanceled        = "57014"
	sqlAdminShutdown        = "57P01"
	sqlCannotConnectNow     = "57P03"
	sqlTooManyConnections   = "53300"
)

// PgError returns the *pgconn.PgError at the root of err
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a Postgres error with the given SQLSTATE
func IsSQLState(err error, state string) bool {
	pgErr, ok := PgError(err)
	return ok && pgErr.Code == state
}

// IsDuplicateKey reports a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, sqlUniqueViolation) }

// IsNoRows reports an empty single-row result
func IsNoRows(err error) bool { return stderrs.Is(err, pgx.ErrNoRows) }

// DBErrorCode classifies a Postgres error; ok is false for non-pg errors
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	if IsNoRows(err) {
		return ErrorCodeNotFound, true
	}
	var connErr *pgconn.ConnectError
	if stderrs.As(err, &connErr) {
		return ErrorCodeUnavailable, true
	}
	pgErr, ok := PgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case sqlUniqueViolation:
		return ErrorCodeConflict, true
	case sqlForeignKeyViolation, sqlInvalidText:
		return ErrorCodeInvalidArgument, true
	case sqlNotNullViolation, sqlCheckViolation:
		return ErrorCodeValidation, true
	case sqlInvalidDatetime, sqlDatetimeOverflow, sqlBadCopyFile:
		return ErrorCodeParse, true
	case sqlQueryCanceled:
		return ErrorCodeTimeout, true
	case sqlAdminShutdown, sqlCannotConnectNow, sqlTooManyConnections:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrapf(err, code, format, a...)
}

// AttachFieldFromPg names the offending column when Postgres reports one
func AttachFieldFromPg(err error) error {
	pgErr, ok := PgError(err)
	if !ok {
		return err
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(err, col)
	}
	return err
}

// IsRetryable reports transient server-side contention or connection loss
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pgErr, ok := PgError(err); ok {
		switch pgErr.Code {
		case sqlSerializationFailure, sqlDeadlockDetected, sqlLockNotAvailable,
			sqlAdminShutdown, sqlCannotConnectNow, sqlTooManyConnections:
			return true
		}
		return false
	}
	var connErr *pgconn.ConnectError
	if stderrs.As(err, &connErr) {
		return true
	}
	msg := strings.ToLower(Root(err).Error())
	for _, frag := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"conn closed",
		"connection reset by peer",
	} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
