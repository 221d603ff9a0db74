package database

import "context"

// RowFunc receives one result row. fields[i] is nil for SQL NULL; otherwise
// it holds the value's raw text bytes. The slices are only valid for the
// duration of the call.
type RowFunc func(fields [][]byte) error

// ReportFunc receives a recoverable error raised while running a query.
type ReportFunc func(err error)

// Connector opens sessions against individual servers.
// Implementations must be safe for concurrent use by multiple goroutines.
type Connector interface {
	// Connect opens one authenticated connection to target.
	Connect(ctx context.Context, target Target) (Session, error)
}

// Session is a single connection owned by exactly one worker.
// It is not safe for concurrent use.
type Session interface {
	// Databases lists the database names the server reports.
	Databases(ctx context.Context) ([]string, error)

	// UseDatabase makes name the session's current database.
	UseDatabase(ctx context.Context, name string) error

	// Run executes query, which may hold several ';'-separated statements,
	// and streams every row of every result set to emit. Statement and
	// retrieval failures go to report and iteration continues where the
	// protocol allows it. Run returns only the error emit returned, which
	// aborts the remaining results.
	Run(ctx context.Context, query string, emit RowFunc, report ReportFunc) error

	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// Lister enumerates the databases on a server.
type Lister interface {
	Databases(ctx context.Context) ([]string, error)
}
