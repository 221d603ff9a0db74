package database

import "time"

// Driver identifies the database engine.
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
)

// Valid reports whether d names a supported engine.
func (d Driver) Valid() bool {
	return d == DriverMySQL || d == DriverPostgres
}

// DefaultPort is the engine's standard TCP port.
func (d Driver) DefaultPort() int {
	if d == DriverPostgres {
		return 5432
	}
	return 3306
}

// DefaultConnectTimeout applies when neither a flag nor a defaults file sets one.
const DefaultConnectTimeout = 2 * time.Second

// Config holds the connection options shared by every task of a run.
//
// It is resolved once at startup and never mutated afterwards, so workers
// read it concurrently without locking.
type Config struct {
	// Driver is the database engine (e.g. DriverMySQL).
	Driver Driver

	// Credentials
	User     string
	Password string

	// Port is the global port; a "host:port" server entry overrides it.
	// Zero means the engine default.
	Port int

	// Socket is the unix socket path (MySQL) or socket directory (Postgres)
	// used when a server entry names no host or "localhost".
	Socket string

	// DefaultDatabase is selected at connect time. Empty means none.
	DefaultDatabase string

	// Timeouts, applied per connection
	ConnectTimeout time.Duration // time limit for establishing a connection
	ReadTimeout    time.Duration // I/O read deadline; zero disables it

	// Compress enables protocol compression where the engine supports it.
	Compress bool
}

// DefaultConfig returns the built-in connection defaults.
func DefaultConfig() *Config {
	return &Config{
		Driver:         DriverMySQL,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// PortFor returns the port a task should connect to: the target's own port
// when it has one, else the global port, else the engine default.
func (c *Config) PortFor(t Target) int {
	switch {
	case t.Port != 0:
		return t.Port
	case c.Port != 0:
		return c.Port
	default:
		return c.Driver.DefaultPort()
	}
}

// UseSocket reports whether a connection to t goes over the local socket.
func (c *Config) UseSocket(t Target) bool {
	return c.Socket != "" && (t.Host == "" || t.Host == "localhost")
}
