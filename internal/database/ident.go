package database

import "strings"

// QuoteIdent quotes a database identifier for d.
// MySQL uses backticks; Postgres uses ANSI double-quotes.
func QuoteIdent(d Driver, name string) string {
	if d == DriverPostgres {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
