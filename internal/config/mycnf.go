package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/koustreak/pmysql/internal/errs"
)

// optionGroups are the my.cnf groups read, later groups overriding earlier.
var optionGroups = []string{"client", "pmysql"}

// MyCnf holds the client defaults found in MySQL option files.
type MyCnf struct {
	User           string
	Password       string
	Port           int
	Socket         string
	ConnectTimeout int
	MetaDatabase   string
}

// DefaultMyCnfPaths lists the option files consulted when no explicit
// defaults file is given, in increasing precedence.
func DefaultMyCnfPaths(home string) []string {
	paths := []string{"/etc/my.cnf", "/etc/mysql/my.cnf"}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".my.cnf"))
	}
	return paths
}

// LoadMyCnf merges the [client] and [pmysql] groups of the given option
// files. Missing files are skipped unless strict is set.
func LoadMyCnf(paths []string, strict bool) (*MyCnf, error) {
	var sources []interface{}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if strict {
				return nil, errs.Wrap(errs.ErrKindNotFound, "could not read defaults file "+p, err)
			}
			continue
		}
		sources = append(sources, p)
	}

	cnf := &MyCnf{}
	if len(sources) == 0 {
		return cnf, nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
	}, sources[0], sources[1:]...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "could not parse defaults file", err)
	}

	for _, group := range optionGroups {
		if !file.HasSection(group) {
			continue
		}
		sec := file.Section(group)

		if v, ok := lookup(sec, "user"); ok {
			cnf.User = v
		}
		if v, ok := lookup(sec, "password"); ok {
			cnf.Password = v
		}
		if v, ok := lookup(sec, "socket"); ok {
			cnf.Socket = v
		}
		if v, ok := lookup(sec, "meta_database"); ok {
			cnf.MetaDatabase = v
		}
		if n, ok, err := lookupInt(sec, "port"); err != nil {
			return nil, err
		} else if ok {
			cnf.Port = n
		}
		if n, ok, err := lookupInt(sec, "connect_timeout"); err != nil {
			return nil, err
		} else if ok {
			cnf.ConnectTimeout = n
		}
	}
	return cnf, nil
}

// lookup finds name in sec, treating '_' and '-' as equivalent like the
// MySQL client does.
func lookup(sec *ini.Section, name string) (string, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "_", "-")} {
		if sec.HasKey(key) {
			return sec.Key(key).String(), true
		}
	}
	return "", false
}

func lookupInt(sec *ini.Section, name string) (int, bool, error) {
	for _, key := range []string{name, strings.ReplaceAll(name, "_", "-")} {
		if !sec.HasKey(key) {
			continue
		}
		n, err := sec.Key(key).Int()
		if err != nil {
			return 0, false, errs.Wrap(errs.ErrKindInvalidInput, "invalid "+key+" in defaults file", err)
		}
		return n, true, nil
	}
	return 0, false, nil
}
