package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/errs"
)

const listDatabases = `
		SELECT datname
		FROM pg_database
		WHERE datallowconn
		ORDER BY datname`

// Connector opens one PostgreSQL session per server.
// It is safe for concurrent use by multiple goroutines.
type Connector struct {
	cfg *database.Config
}

// New returns a Connector using cfg for every connection.
func New(cfg *database.Config) *Connector {
	return &Connector{cfg: cfg}
}

// Connect opens a connection to target's default database.
func (c *Connector) Connect(ctx context.Context, target database.Target) (database.Session, error) {
	dial := func(ctx context.Context, dbname string) (conn, error) {
		return c.dial(ctx, target, dbname)
	}
	cn, err := dial(ctx, c.cfg.DefaultDatabase)
	if err != nil {
		return nil, err
	}
	return &Session{dial: dial, conn: cn}, nil
}

func (c *Connector) dial(ctx context.Context, target database.Target, dbname string) (conn, error) {
	pc, err := parseConfig(c.cfg, target, dbname)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid connection settings", err)
	}
	cn, err := pgconn.ConnectConfig(ctx, pc)
	if err != nil {
		return nil, mapError(err, "connect failed")
	}
	return wireConn{cn}, nil
}

// Session is one PostgreSQL connection owned by a single worker.
//
// PostgreSQL binds a connection to one database, so UseDatabase replaces
// the connection instead of issuing a statement.
type Session struct {
	dial func(ctx context.Context, dbname string) (conn, error)
	conn conn
}

// Databases lists every database that accepts connections.
func (s *Session) Databases(ctx context.Context) ([]string, error) {
	var names []string
	mrr := s.conn.exec(ctx, listDatabases)
	for mrr.NextResult() {
		rs := mrr.resultSet()
		for rs.NextRow() {
			names = append(names, string(rs.Values()[0]))
		}
		if _, err := rs.Close(); err != nil {
			_ = mrr.Close()
			return nil, mapError(err, "failed to list databases")
		}
	}
	if err := mrr.Close(); err != nil {
		return nil, mapError(err, "failed to list databases")
	}
	return names, nil
}

// UseDatabase reconnects to name. On failure the current connection is kept.
func (s *Session) UseDatabase(ctx context.Context, name string) error {
	cn, err := s.dial(ctx, name)
	if err != nil {
		return err
	}
	if s.conn != nil {
		_ = s.conn.close(ctx)
	}
	s.conn = cn
	return nil
}

// Run executes query over the simple protocol, which allows several
// ';'-separated statements, and streams every result's rows to emit.
// Values arrive in text format; NULL is a nil slice.
//
// The server aborts the rest of the query string at the first failing
// statement. pgconn returns that error from both the statement's result and
// the reader, so it is reported once.
func (s *Session) Run(ctx context.Context, query string, emit database.RowFunc, report database.ReportFunc) error {
	mrr := s.conn.exec(ctx, query)

	var reported error
	for mrr.NextResult() {
		rs := mrr.resultSet()
		for rs.NextRow() {
			if err := emit(rs.Values()); err != nil {
				_, _ = rs.Close()
				_ = mrr.Close()
				return err
			}
		}
		if _, err := rs.Close(); err != nil {
			report(mapError(err, "failed to execute statement"))
			reported = err
		}
	}

	if err := mrr.Close(); err != nil && !sameError(err, reported) {
		report(mapError(err, "failed to execute query"))
	}
	return nil
}

// sameError reports whether a and b describe the same failure. pgconn
// builds a separate *PgError for each reader, so identity is not enough.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || a.Error() == b.Error()
}

// Close terminates the connection. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.close(context.Background())
	s.conn = nil
	return err
}
