package mysql

import (
	"net"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/pmysql/internal/database"
)

// buildDSN constructs the go-sql-driver DSN for one server.
func buildDSN(cfg *database.Config, target database.Target) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.DefaultDatabase

	if cfg.UseSocket(target) {
		mc.Net = "unix"
		mc.Addr = cfg.Socket
	} else {
		host := target.Host
		if host == "" {
			host = "localhost"
		}
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(cfg.PortFor(target)))
	}

	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.ReadTimeout

	// Queries may hold several ';'-separated statements.
	mc.MultiStatements = true

	dsn := mc.FormatDSN()
	if cfg.Compress {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "compress=true"
	}
	return dsn
}
