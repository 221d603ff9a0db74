// Package errs provides the unified error type used across pmysql.
//
// Every subsystem (database drivers, filestore, sink, …) wraps its native
// errors into *errs.Error before returning them to callers. Errors raised
// while working on a server carry the server (and database) they relate to,
// so the log channel can tag every failure with its origin.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindConnectionFailed, "connect failed", err)
//
//	// In the worker, attach the task identity:
//	return errs.Wrap(errs.ErrKindSelectDatabase, "could not select db", err).On(server, db)
//
//	// In a caller, check the error kind:
//	if errs.IsConnectionFailed(err) { ... }
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// All backends (MySQL, Postgres, MinIO, …) map their native errors to one
// of these kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no object, no bucket, no file
	ErrKindConnectionFailed         // cannot reach or authenticate to the backend
	ErrKindTimeout                  // context deadline / driver timeout
	ErrKindQueryFailed              // statement execution or result retrieval error
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindSelectDatabase           // could not switch to a database
	ErrKindListDatabases            // could not enumerate databases
	ErrKindOutput                   // the output sink is broken
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindSelectDatabase:
		return "select_database"
	case ErrKindListDatabases:
		return "list_databases"
	case ErrKindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all pmysql subsystems.
// Drivers produce it; the worker tags it with the server and database.
type Error struct {
	Kind     ErrKind
	Message  string
	Server   string // server-list entry the error relates to, if any
	Database string // database the error relates to, if any
	Cause    error  // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Server != "" && e.Database != "":
		msg = fmt.Sprintf("%s/%s: %s", e.Server, e.Database, msg)
	case e.Server != "":
		msg = fmt.Sprintf("%s: %s", e.Server, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// On returns a copy of e tagged with the given server and database.
func (e *Error) On(server, database string) *Error {
	c := *e
	c.Server = server
	c.Database = database
	return &c
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
// An existing *Error cause keeps its own kind when kind is ErrKindUnknown.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	if kind == ErrKindUnknown {
		kind = KindOf(cause)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a missing file, object or bucket.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or driver timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a statement execution failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsSelectDatabase reports whether err is a failure to switch databases.
func IsSelectDatabase(err error) bool {
	return KindOf(err) == ErrKindSelectDatabase
}

// IsListDatabases reports whether err is a failure to enumerate databases.
func IsListDatabases(err error) bool {
	return KindOf(err) == ErrKindListDatabases
}

// IsOutput reports whether err is an output sink failure.
func IsOutput(err error) bool {
	return KindOf(err) == ErrKindOutput
}

// KindOf extracts the ErrKind from the outermost *Error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
