package postgres

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/pmysql/internal/database"
)

// connString builds a keyword/value connection string for target and dbname.
func connString(cfg *database.Config, target database.Target, dbname string) string {
	host := target.Host
	if cfg.UseSocket(target) {
		host = cfg.Socket
	} else if host == "" {
		host = "localhost"
	}

	kv := []string{
		"host=" + quoteValue(host),
		"port=" + strconv.Itoa(cfg.PortFor(target)),
	}
	if cfg.User != "" {
		kv = append(kv, "user="+quoteValue(cfg.User))
	}
	if cfg.Password != "" {
		kv = append(kv, "password="+quoteValue(cfg.Password))
	}
	if dbname != "" {
		kv = append(kv, "dbname="+quoteValue(dbname))
	}
	return strings.Join(kv, " ")
}

// parseConfig turns the connection string into a pgconn.Config carrying the
// run's connect timeout.
func parseConfig(cfg *database.Config, target database.Target, dbname string) (*pgconn.Config, error) {
	pc, err := pgconn.ParseConfig(connString(cfg, target, dbname))
	if err != nil {
		return nil, err
	}
	pc.ConnectTimeout = cfg.ConnectTimeout
	return pc, nil
}

func quoteValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
