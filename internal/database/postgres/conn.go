package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// conn is the part of *pgconn.PgConn a Session uses.
type conn interface {
	exec(ctx context.Context, sql string) results
	close(ctx context.Context) error
}

// results walks the results of a simple-protocol query, one per statement.
type results interface {
	NextResult() bool
	resultSet() resultSet
	Close() error
}

// resultSet is one statement's rows.
type resultSet interface {
	NextRow() bool
	Values() [][]byte
	Close() (pgconn.CommandTag, error)
}

type wireConn struct {
	pc *pgconn.PgConn
}

func (c wireConn) exec(ctx context.Context, sql string) results {
	return wireResults{c.pc.Exec(ctx, sql)}
}

func (c wireConn) close(ctx context.Context) error {
	return c.pc.Close(ctx)
}

type wireResults struct {
	*pgconn.MultiResultReader
}

func (r wireResults) resultSet() resultSet {
	return r.ResultReader()
}
