// Package dbtest provides an in-memory database.Connector for tests.
//
// Sessions understand a tiny statement language: queries are split on ';'
// and each trimmed statement is handled on its own.
//
//	SELECT <text>        one row with the single field <text>
//	SELECT DATABASE()    one row with the current database, NULL if none
//	SELECT NULL          one row with a single NULL field
//	anything else        no result set
//
// A statement listed in Server.Fail reports its error and execution
// continues with the next statement.
package dbtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/errs"
)

// Server describes how one fake server behaves.
type Server struct {
	ConnectErr error
	Databases  []string
	ListErr    error
	SelectErr  map[string]error // by database name
	Fail       map[string]error // by trimmed statement text
}

// Connector is a database.Connector over a set of fake servers keyed by
// server-list entry. Unknown entries connect to an empty server.
type Connector struct {
	Servers map[string]*Server

	// Gate, when set, is received from before each connect returns.
	Gate chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	opened    map[string]int
	closed    map[string]int
	selected  map[string][]string
}

// NewConnector returns a Connector over servers.
func NewConnector(servers map[string]*Server) *Connector {
	if servers == nil {
		servers = make(map[string]*Server)
	}
	return &Connector{
		Servers:  servers,
		opened:   make(map[string]int),
		closed:   make(map[string]int),
		selected: make(map[string][]string),
	}
}

// Connect implements database.Connector.
func (c *Connector) Connect(ctx context.Context, target database.Target) (database.Session, error) {
	c.mu.Lock()
	srv, ok := c.Servers[target.Name]
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()

	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
		}
	}

	if !ok {
		srv = &Server{}
	}
	if srv.ConnectErr != nil {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
		return nil, srv.ConnectErr
	}

	c.mu.Lock()
	c.opened[target.Name]++
	c.mu.Unlock()
	return &session{c: c, name: target.Name, srv: srv}, nil
}

// MaxActive is the highest number of simultaneously connecting or open sessions.
func (c *Connector) MaxActive() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}

// Opened reports how many sessions were opened for name.
func (c *Connector) Opened(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened[name]
}

// Closed reports how many sessions were closed for name.
func (c *Connector) Closed(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[name]
}

// Selected returns the databases successfully selected on name, in order.
func (c *Connector) Selected(name string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.selected[name]...)
}

type session struct {
	c      *Connector
	name   string
	srv    *Server
	db     string
	closed bool
}

func (s *session) Databases(context.Context) ([]string, error) {
	if s.srv.ListErr != nil {
		return nil, s.srv.ListErr
	}
	return append([]string(nil), s.srv.Databases...), nil
}

func (s *session) UseDatabase(_ context.Context, name string) error {
	if err := s.srv.SelectErr[name]; err != nil {
		return err
	}
	s.db = name
	s.c.mu.Lock()
	s.c.selected[s.name] = append(s.c.selected[s.name], name)
	s.c.mu.Unlock()
	return nil
}

func (s *session) Run(_ context.Context, query string, emit database.RowFunc, report database.ReportFunc) error {
	if s.closed {
		return errors.New("dbtest: session closed")
	}
	for _, stmt := range strings.Split(query, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := s.srv.Fail[stmt]; err != nil {
			report(errs.Wrap(errs.ErrKindQueryFailed, "failed to execute statement", err))
			continue
		}

		upper := strings.ToUpper(stmt)
		if !strings.HasPrefix(upper, "SELECT ") {
			continue
		}

		var field []byte
		switch value := strings.TrimSpace(stmt[len("SELECT "):]); strings.ToUpper(value) {
		case "DATABASE()":
			if s.db != "" {
				field = []byte(s.db)
			}
		case "NULL":
		default:
			field = []byte(value)
		}
		if err := emit([][]byte{field}); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.c.mu.Lock()
	s.c.active--
	s.c.closed[s.name]++
	s.c.mu.Unlock()
	return nil
}
