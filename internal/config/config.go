// Package config resolves pmysql's run settings from command-line flags,
// the YAML tool configuration and MySQL option files.
//
// Precedence, highest first: explicit flag, YAML file, my.cnf, built-in
// default.
package config

import (
	"strings"
	"time"

	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/filestore"
	"github.com/koustreak/pmysql/internal/logger"
)

// DefaultThreads is the worker pool size when none is configured.
const DefaultThreads = 200

// Flags carries raw command-line values. Set records which flags the user
// gave explicitly, keyed by long flag name.
type Flags struct {
	Query        string
	QueryFile    string
	ServersFile  string
	User         string
	Password     string
	Port         int
	Socket       string
	Database     string
	All          bool
	Threads      int
	Escape       bool
	Compress     bool
	Connect      int // connect timeout, seconds
	Read         int // read timeout, seconds
	Driver       string
	MetaDatabase string
	Exclude      []string
	StatusAddr   string
	LogLevel     string
	LogFormat    string

	Set map[string]bool
}

func (f *Flags) set(name string) bool {
	return f.Set[name]
}

// Settings is the fully resolved, validated configuration of one run.
type Settings struct {
	DB          *database.Config
	Scope       database.Scope
	Threads     int
	Escape      bool
	Query       string // literal query text, may be empty
	QueryFile   string
	ServersFile string
	StatusAddr  string
	Log         *logger.Config

	// Filestore is nil unless an object-store endpoint is configured.
	Filestore *filestore.Config
}

// Resolve merges flags, file and cnf into Settings. file and cnf may be nil.
// Option files only apply to the MySQL driver.
func Resolve(f Flags, file *File, cnf *MyCnf) (*Settings, error) {
	if file == nil {
		file = &File{}
	}
	if cnf == nil {
		cnf = &MyCnf{}
	}

	driver := database.Driver(pickString(f.set("driver"), f.Driver, file.Driver, "", string(database.DriverMySQL)))
	if !driver.Valid() {
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported driver "+string(driver))
	}
	if driver != database.DriverMySQL {
		cnf = &MyCnf{}
	}

	db := database.DefaultConfig()
	db.Driver = driver
	db.User = pickString(f.set("user"), f.User, file.User, cnf.User, "")
	db.Password = pickString(f.set("password"), f.Password, file.Password, cnf.Password, "")
	db.Socket = pickString(f.set("socket"), f.Socket, file.Socket, cnf.Socket, "")
	db.Port = pickInt(f.set("port"), f.Port, file.Port, cnf.Port, 0)
	db.Compress = pickBool(f.set("compress"), f.Compress, file.Compress)

	connect := pickInt(f.set("connect-timeout"), f.Connect, file.ConnectTimeout, cnf.ConnectTimeout, int(database.DefaultConnectTimeout/time.Second))
	read := pickInt(f.set("read-timeout"), f.Read, file.ReadTimeout, 0, 0)
	db.ConnectTimeout = time.Duration(connect) * time.Second
	db.ReadTimeout = time.Duration(read) * time.Second

	threads := pickInt(f.set("threads"), f.Threads, file.Threads, 0, DefaultThreads)

	log := logger.DefaultConfig()
	log.Level = pickString(f.set("log-level"), f.LogLevel, file.Log.Level, "", log.Level)
	log.Format = pickString(f.set("log-format"), f.LogFormat, file.Log.Format, "", log.Format)

	s := &Settings{
		DB:          db,
		Threads:     threads,
		Escape:      pickBool(f.set("escape"), f.Escape, file.Escape),
		Query:       f.Query,
		QueryFile:   f.QueryFile,
		ServersFile: f.ServersFile,
		StatusAddr:  pickString(f.set("status-addr"), f.StatusAddr, file.StatusAddr, "", ""),
		Log:         log,
	}

	if file.Filestore.Endpoint != "" {
		fs := filestore.DefaultConfig(file.Filestore.Endpoint, file.Filestore.AccessKey, file.Filestore.SecretKey)
		fs.UseSSL = file.Filestore.UseSSL
		fs.Region = file.Filestore.Region
		s.Filestore = fs
	}

	names := splitList(pickString(f.set("database"), f.Database, file.Database, "", ""))
	if len(names) > 0 {
		db.DefaultDatabase = names[0]
	}

	all := pickBool(f.set("all"), f.All, file.All)
	switch {
	case all:
		exclude := database.BuiltinExclusions(driver)
		if meta := pickString(f.set("meta-database"), f.MetaDatabase, file.MetaDatabase, cnf.MetaDatabase, ""); meta != "" {
			exclude = append(exclude, meta)
		}
		exclude = append(exclude, file.Exclude...)
		exclude = append(exclude, f.Exclude...)
		s.Scope = database.AllExcept(exclude, names...)
	case len(names) > 1:
		s.Scope = database.Explicit(names...)
	default:
		s.Scope = database.NoScope()
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch {
	case s.Threads < 1:
		return errs.New(errs.ErrKindInvalidInput, "threads must be at least 1")
	case s.DB.Port < 0 || s.DB.Port > 65535:
		return errs.New(errs.ErrKindInvalidInput, "port out of range")
	case s.DB.ConnectTimeout < 0:
		return errs.New(errs.ErrKindInvalidInput, "connect timeout must not be negative")
	case s.DB.ReadTimeout < 0:
		return errs.New(errs.ErrKindInvalidInput, "read timeout must not be negative")
	case !logger.ValidLevel(s.Log.Level):
		return errs.New(errs.ErrKindInvalidInput, "invalid log level "+s.Log.Level)
	case s.Log.Format != "console" && s.Log.Format != "json":
		return errs.New(errs.ErrKindInvalidInput, "invalid log format "+s.Log.Format)
	case s.QueryFile == "-":
		return errs.New(errs.ErrKindInvalidInput, "query file cannot be read from stdin")
	}
	return nil
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pickString(flagSet bool, flag, file, cnf, def string) string {
	switch {
	case flagSet:
		return flag
	case file != "":
		return file
	case cnf != "":
		return cnf
	}
	return def
}

func pickInt(flagSet bool, flag, file, cnf, def int) int {
	switch {
	case flagSet:
		return flag
	case file != 0:
		return file
	case cnf != 0:
		return cnf
	}
	return def
}

func pickBool(flagSet bool, flag, file bool) bool {
	if flagSet {
		return flag
	}
	return file
}
