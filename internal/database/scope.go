package database

import (
	"context"
	"slices"
)

// ScopeKind selects how a task picks the databases it runs the query on.
type ScopeKind int

const (
	// ScopeDefault runs the query once on the connection's default database.
	ScopeDefault ScopeKind = iota
	// ScopeExplicit runs the query once per listed name, in order.
	ScopeExplicit
	// ScopeAll runs the query on every reported database not excluded, then
	// once more on every listed name.
	ScopeAll
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeExplicit:
		return "explicit"
	case ScopeAll:
		return "all"
	default:
		return "default"
	}
}

// Scope is a task's database-iteration policy. It is built once at startup
// and shared read-only by all workers.
type Scope struct {
	Kind ScopeKind

	// Names are the explicit databases, or the tail run after the "all"
	// phase. Duplicates are kept.
	Names []string

	// Exclude holds the databases the "all" phase skips.
	Exclude map[string]struct{}
}

// NoScope returns the default-database scope.
func NoScope() Scope {
	return Scope{Kind: ScopeDefault}
}

// Explicit returns a scope running once per name.
func Explicit(names ...string) Scope {
	return Scope{Kind: ScopeExplicit, Names: names}
}

// AllExcept returns a scope running on every database except exclude,
// followed by tail.
func AllExcept(exclude []string, tail ...string) Scope {
	set := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		set[name] = struct{}{}
	}
	return Scope{Kind: ScopeAll, Names: tail, Exclude: set}
}

// Excluded reports whether the "all" phase skips name.
func (s Scope) Excluded(name string) bool {
	_, ok := s.Exclude[name]
	return ok
}

// Resolve returns the ordered databases a task iterates. ScopeDefault
// yields none; the caller runs the query once without selecting.
//
// For ScopeAll the enumeration and the tail are independent: if listing
// fails, the tail is still returned together with the listing error.
// A tail name that the enumeration also produced appears twice.
func (s Scope) Resolve(ctx context.Context, l Lister) ([]string, error) {
	switch s.Kind {
	case ScopeDefault:
		return nil, nil
	case ScopeExplicit:
		return slices.Clone(s.Names), nil
	}

	all, err := l.Databases(ctx)

	dbs := make([]string, 0, len(all)+len(s.Names))
	for _, name := range all {
		if !s.Excluded(name) {
			dbs = append(dbs, name)
		}
	}
	return append(dbs, s.Names...), err
}

// BuiltinExclusions lists the databases the "all" phase always skips.
func BuiltinExclusions(d Driver) []string {
	if d == DriverPostgres {
		return []string{"template0", "template1"}
	}
	return []string{"mysql", "test", "information_schema"}
}
