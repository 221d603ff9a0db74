package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koustreak/pmysql/internal/config"
	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/database/mysql"
	"github.com/koustreak/pmysql/internal/database/postgres"
	"github.com/koustreak/pmysql/internal/filestore/minio"
	"github.com/koustreak/pmysql/internal/logger"
	"github.com/koustreak/pmysql/internal/runner"
	"github.com/koustreak/pmysql/internal/sink"
	"github.com/koustreak/pmysql/internal/source"
	"github.com/koustreak/pmysql/internal/status"
	"github.com/koustreak/pmysql/internal/worker"
)

const configFileName = ".pmysql.yaml"

// app holds the process boundaries so tests can replace them.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	home   string
	exit   func(code int)

	connector func(cfg *database.Config) database.Connector
}

func newApp() *app {
	home, _ := os.UserHomeDir()
	return &app{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		home:      home,
		exit:      os.Exit,
		connector: newConnector,
	}
}

func newConnector(cfg *database.Config) database.Connector {
	if cfg.Driver == database.DriverPostgres {
		return postgres.New(cfg)
	}
	return mysql.New(cfg)
}

func (a *app) run(ctx context.Context, f config.Flags, opts cliOptions, args []string) error {
	settings, err := a.settings(f, opts)
	if err != nil {
		return err
	}

	settings.Log.Output = a.stderr
	log := logger.New(settings.Log)
	logger.SetGlobal(log)

	opener := &source.Opener{Stdin: a.stdin}
	if settings.Filestore != nil {
		store, err := minio.New(settings.Filestore)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			return err
		}
		opener.Store = store
	}

	query, err := opener.LoadQuery(ctx, settings.Query, settings.QueryFile, args)
	if err != nil {
		return err
	}

	servers, err := opener.Open(ctx, settings.ServersFile)
	if err != nil {
		return err
	}
	defer servers.Close()

	metrics := status.NewMetrics()
	if settings.StatusAddr != "" {
		srv := status.NewServer(settings.StatusAddr, metrics, log)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.WarnWith("status server shutdown failed", err, nil)
			}
		}()
	}

	out := sink.New(a.stdout, func(err error) {
		log.ErrorWith("could not write output", err, nil)
		a.exit(1)
	})

	w := worker.New(a.connector(settings.DB), out, worker.Options{
		Escape:   settings.Escape,
		Log:      log,
		Observer: metrics,
	})
	r := runner.New(w, runner.Options{
		Threads: settings.Threads,
		Scope:   settings.Scope,
		Query:   query,
		Log:     log,
	})

	log.With().
		Str("driver", string(settings.DB.Driver)).
		Str("scope", settings.Scope.Kind.String()).
		Int("threads", settings.Threads).
		Logger().Debug("starting fan-out")

	sum, err := r.Run(ctx, servers)
	log.InfoWith("fan-out finished", map[string]interface{}{
		"servers":  sum.Servers,
		"failed":   sum.Failed,
		"failures": sum.Failures,
		"rows":     sum.Rows,
		"lines":    out.Lines(),
		"elapsed":  sum.Elapsed.String(),
	})
	if err != nil {
		return err
	}
	return out.Err()
}

// settings loads the YAML and my.cnf layers and resolves them with f.
func (a *app) settings(f config.Flags, opts cliOptions) (*config.Settings, error) {
	file := &config.File{}
	path, required := opts.configFile, true
	if path == "" && a.home != "" {
		path, required = filepath.Join(a.home, configFileName), false
	}
	if path != "" {
		var err error
		if file, err = config.LoadFile(path, required); err != nil {
			return nil, err
		}
	}

	paths, strict := config.DefaultMyCnfPaths(a.home), false
	if opts.defaultsFile != "" {
		paths, strict = []string{opts.defaultsFile}, true
	}
	cnf, err := config.LoadMyCnf(paths, strict)
	if err != nil {
		return nil, err
	}

	return config.Resolve(f, file, cnf)
}
