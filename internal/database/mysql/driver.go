package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/errs"
)

// Connector opens one MySQL session per server.
// It is safe for concurrent use by multiple goroutines.
type Connector struct {
	cfg  *database.Config
	open func(dsn string) (*sql.DB, error)
}

// New returns a Connector using cfg for every connection.
func New(cfg *database.Config) *Connector {
	return &Connector{cfg: cfg, open: openDB}
}

func openDB(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

// Connect opens a single pinned connection to target.
func (c *Connector) Connect(ctx context.Context, target database.Target) (database.Session, error) {
	db, err := c.open(buildDSN(c.cfg, target))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	// A task owns exactly one connection; USE must stick to it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newSession(ctx, db)
}

func newSession(ctx context.Context, db *sql.DB) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, mapError(err, "connect failed")
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, mapError(err, "ping failed")
	}
	return &Session{db: db, conn: conn}, nil
}

// Session is one MySQL connection owned by a single worker.
type Session struct {
	db   *sql.DB
	conn *sql.Conn
}

// Databases runs SHOW DATABASES.
func (s *Session) Databases(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, mapError(err, "failed to list databases")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan database name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating databases")
	}
	return names, nil
}

// UseDatabase switches the connection's current database.
func (s *Session) UseDatabase(ctx context.Context, name string) error {
	if _, err := s.conn.ExecContext(ctx, "USE "+database.QuoteIdent(database.DriverMySQL, name)); err != nil {
		return mapError(err, "failed to select database")
	}
	return nil
}

// Run executes query and streams every result set's rows to emit.
//
// Fields are scanned through textField, so a NULL arrives as a nil slice and
// numbers keep the server's text form. The server stops a multi-statement
// batch at the first failing statement; that failure is reported once the
// results up to it have been streamed.
func (s *Session) Run(ctx context.Context, query string, emit database.RowFunc, report database.ReportFunc) error {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		report(mapError(err, "failed to execute query"))
		return nil
	}
	defer rows.Close()

	var (
		cells  []textField
		dest   []any
		fields [][]byte
	)

	for {
		cols, err := rows.Columns()
		if err != nil {
			report(mapError(err, "failed to read result columns"))
			return nil
		}

		if len(cols) > 0 {
			cells = make([]textField, len(cols))
			dest = make([]any, len(cols))
			fields = make([][]byte, len(cols))
			for i := range cells {
				dest[i] = &cells[i]
			}

			for rows.Next() {
				if err := rows.Scan(dest...); err != nil {
					report(mapError(err, "failed to read row"))
					break
				}
				for i := range cells {
					fields[i] = cells[i].value()
				}
				if err := emit(fields); err != nil {
					return err
				}
			}
		}

		if !rows.NextResultSet() {
			break
		}
	}

	if err := rows.Err(); err != nil {
		report(mapError(err, "failed to retrieve result set fully"))
	}
	return nil
}

// Close releases the connection and its pool.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.conn, s.db = nil, nil
	return err
}
