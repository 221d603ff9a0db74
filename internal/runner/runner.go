// Package runner drives a whole fan-out: it turns every server-list line
// into a task, runs the tasks on a bounded pool and waits for all of them.
package runner

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/logger"
	"github.com/koustreak/pmysql/internal/pool"
	"github.com/koustreak/pmysql/internal/source"
	"github.com/koustreak/pmysql/internal/worker"
)

// Options configures a Runner.
type Options struct {
	Threads int // pool size; pool.DefaultSize when zero
	Scope   database.Scope
	Query   string
	Log     *logger.Logger
}

// Summary totals the results of every task of a run.
type Summary struct {
	Servers  int   // tasks submitted, one per server-list line
	Failed   int   // tasks that reported at least one failure
	Failures int   // failures reported across all tasks
	Aborted  int   // tasks stopped by a broken output
	Rows     int64 // rows written
	Elapsed  time.Duration
}

// Runner runs one query against every server of a list.
type Runner struct {
	worker *worker.Worker
	opts   Options
	log    *logger.Logger
}

// New returns a Runner executing tasks with w.
func New(w *worker.Worker, opts Options) *Runner {
	if opts.Threads <= 0 {
		opts.Threads = pool.DefaultSize
	}
	log := opts.Log
	if log == nil {
		log = logger.Global()
	}
	return &Runner{worker: w, opts: opts, log: log}
}

// Run submits one task per line of servers and returns once every task has
// finished. Task failures only show up in the Summary; the error is reserved
// for problems reading the server list or a cancelled ctx, and even then all
// tasks submitted so far are waited for.
func (r *Runner) Run(ctx context.Context, servers io.Reader) (Summary, error) {
	start := time.Now()

	var (
		mu  sync.Mutex
		sum Summary
	)
	p := pool.New(r.opts.Threads, func(task worker.Task) {
		res := r.worker.Run(ctx, task)

		mu.Lock()
		defer mu.Unlock()
		sum.Rows += res.Rows
		sum.Failures += res.Failures
		if res.Failures > 0 {
			sum.Failed++
		}
		if res.Aborted {
			sum.Aborted++
		}
	})

	err := source.EachLine(servers, func(line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return p.Submit(worker.Task{Server: line, Scope: r.opts.Scope, Query: r.opts.Query})
	})

	r.log.With().
		Int("tasks", int(p.Submitted())).
		Int("completed", int(p.Completed())).
		Int("pending", p.Pending()).
		Logger().Debug("server list read, waiting for tasks")
	p.Drain()
	r.log.With().Int("completed", int(p.Completed())).Logger().Debug("all tasks finished")

	mu.Lock()
	defer mu.Unlock()
	sum.Servers = int(p.Completed())
	sum.Elapsed = time.Since(start)
	return sum, err
}
