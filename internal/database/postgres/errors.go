package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/pmysql/internal/errs"
)

// PostgreSQL SQLSTATE error codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInvalidAuthorization = "28000"
	pgErrInvalidPassword      = "28P01"
	pgErrInsufficientPriv     = "42501"
	pgErrInvalidCatalogName   = "3D000"
	pgErrUndefinedTable       = "42P01"
	pgErrUndefinedColumn      = "42703"
	pgErrSyntaxError          = "42601"
	pgErrQueryCanceled        = "57014"
	pgErrTooManyConnections   = "53300"
)

// mapError converts a pgx error into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// classifySQLState maps a SQLSTATE to ErrKind.
func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgErrInvalidAuthorization, pgErrInvalidPassword, pgErrInsufficientPriv:
		return errs.ErrKindPermissionDenied
	case pgErrInvalidCatalogName, pgErrUndefinedTable:
		return errs.ErrKindNotFound
	case pgErrQueryCanceled:
		return errs.ErrKindTimeout
	case pgErrTooManyConnections:
		return errs.ErrKindConnectionFailed
	case pgErrSyntaxError, pgErrUndefinedColumn:
		return errs.ErrKindQueryFailed
	}
	// Class 08: connection exception
	if strings.HasPrefix(code, "08") {
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}
