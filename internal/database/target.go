package database

import (
	"net"
	"strconv"
	"strings"

	"github.com/koustreak/pmysql/internal/errs"
)

// Target is one server-list entry.
type Target struct {
	// Name is the entry verbatim; it prefixes every output line.
	Name string

	// Host is Name without any port suffix. Empty means the driver's
	// default host (normally the local socket).
	Host string

	// Port overrides the global port when non-zero.
	Port int
}

// ParseTarget splits a server-list entry into host and optional port.
//
// "db1", "db1:3307", "[::1]:3307" and a bare IPv6 address "::1" are accepted.
// A non-numeric port is rejected.
func ParseTarget(entry string) (Target, error) {
	t := Target{Name: entry, Host: entry}

	var host, port string
	switch {
	case strings.HasPrefix(entry, "["):
		h, p, err := net.SplitHostPort(entry)
		if err != nil {
			// "[::1]" without a port
			if strings.HasSuffix(entry, "]") {
				t.Host = strings.Trim(entry, "[]")
				return t, nil
			}
			return t, errs.Wrap(errs.ErrKindInvalidInput, "invalid server entry "+strconv.Quote(entry), err)
		}
		host, port = h, p
	case strings.Count(entry, ":") == 1:
		i := strings.IndexByte(entry, ':')
		host, port = entry[:i], entry[i+1:]
	default:
		return t, nil
	}

	t.Host = host
	if port == "" {
		return t, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return t, errs.New(errs.ErrKindInvalidInput, "invalid port in server entry "+strconv.Quote(entry))
	}
	t.Port = n
	return t, nil
}
