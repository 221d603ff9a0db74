package main

import (
	"github.com/koustreak/pmysql/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliOptions are the flags that do not map onto config.Flags.
type cliOptions struct {
	configFile   string
	defaultsFile string
}

func newRootCmd(a *app) *cobra.Command {
	var (
		f    config.Flags
		opts cliOptions
	)

	cmd := &cobra.Command{
		Use:   "pmysql [flags] [query]",
		Short: "Run a query against many database servers in parallel",
		Long: `pmysql reads a list of servers, one "host" or "host:port" per line, and runs
the same query against each of them on a bounded pool of connections.

Every result row is written to stdout as one tab separated line prefixed with
the server entry (and the database, when several databases are queried).
Failures are logged to stderr and never stop the other servers.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Set = make(map[string]bool)
			cmd.Flags().Visit(func(fl *pflag.Flag) {
				f.Set[fl.Name] = true
			})
			return a.run(cmd.Context(), f, opts, args)
		},
	}

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.StringVarP(&f.Query, "query", "Q", "", "query to execute; ';' separates statements")
	fs.StringVarP(&f.QueryFile, "query-file", "F", "", "read the query from a file or minio://bucket/key")
	fs.StringVarP(&f.ServersFile, "servers-file", "X", "-", "server list file, minio://bucket/key, or '-' for stdin")
	fs.StringVarP(&f.User, "user", "u", "", "user for login")
	fs.StringVarP(&f.Password, "password", "p", "", "password to use")
	fs.IntVarP(&f.Port, "port", "P", 0, "TCP port, overridden by host:port entries")
	fs.StringVarP(&f.Socket, "socket", "S", "", "socket used for entries without a host or 'localhost'")
	fs.StringVarP(&f.Database, "database", "B", "", "database, or comma separated list of databases, to use")
	fs.BoolVarP(&f.All, "all", "A", false, "run against every database on each server")
	fs.IntVarP(&f.Threads, "threads", "t", config.DefaultThreads, "number of servers queried at once")
	fs.BoolVarP(&f.Escape, "escape", "e", false, "escape tab, newline and NUL in values")
	fs.BoolVarP(&f.Compress, "compress", "c", false, "use the compressed protocol")
	fs.IntVarP(&f.Connect, "connect-timeout", "T", 2, "connect timeout in seconds")
	fs.IntVarP(&f.Read, "read-timeout", "R", 0, "read timeout in seconds, 0 disables it")
	fs.StringVar(&f.Driver, "driver", "mysql", "database engine: mysql or postgres")
	fs.StringVar(&f.MetaDatabase, "meta-database", "", "extra database skipped by --all")
	fs.StringSliceVar(&f.Exclude, "exclude", nil, "more databases skipped by --all")
	fs.StringVar(&f.StatusAddr, "status-addr", "", "serve /healthz, /status and /metrics on this address")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&f.LogFormat, "log-format", "console", "log format: console or json")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (default ~/.pmysql.yaml)")
	fs.StringVar(&opts.defaultsFile, "defaults-file", "", "read MySQL options only from this file")

	return cmd
}
