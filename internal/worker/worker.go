// Package worker executes one fan-out task: a query against one server.
package worker

import (
	"context"
	"errors"

	"github.com/koustreak/pmysql/internal/database"
	"github.com/koustreak/pmysql/internal/encode"
	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/logger"
)

// Task is the unit of work for a single server. It is owned by exactly one
// worker for its whole lifetime.
type Task struct {
	Server string         // server-list entry, "host" or "host:port"
	Scope  database.Scope // shared, read-only
	Query  string
}

// LineWriter receives encoded output lines. Implementations must make each
// Write atomic with respect to concurrent callers.
type LineWriter interface {
	Write(line []byte) error
}

// Observer is notified about task progress. Calls come from many workers
// concurrently.
type Observer interface {
	TaskStarted(server string)
	TaskFinished(res Result)
	Failure(err *errs.Error)
	Row(server string)
}

// Result summarises one finished task.
type Result struct {
	Server   string
	Rows     int64
	Failures int
	// Aborted is set when the output broke and the task stopped early.
	Aborted bool
}

// Options configures a Worker.
type Options struct {
	Escape   bool
	Log      *logger.Logger
	Observer Observer
}

// Worker runs tasks. A Worker is stateless between tasks and may run many
// tasks concurrently; every task gets its own connection and encoder.
type Worker struct {
	connector database.Connector
	out       LineWriter
	escape    bool
	log       *logger.Logger
	observer  Observer
}

// New returns a Worker streaming rows from connector's sessions into out.
func New(connector database.Connector, out LineWriter, opts Options) *Worker {
	log := opts.Log
	if log == nil {
		log = logger.Global()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Worker{
		connector: connector,
		out:       out,
		escape:    opts.Escape,
		log:       log,
		observer:  observer,
	}
}

// errAborted stops a task once its output can no longer be written.
var errAborted = errors.New("output aborted")

// Run executes task and reports every failure; it never returns an error
// because a task's failure must not affect any other task.
func (w *Worker) Run(ctx context.Context, task Task) Result {
	t := &run{w: w, task: task, res: Result{Server: task.Server}, enc: encode.New(w.escape)}

	w.observer.TaskStarted(task.Server)
	defer func() { w.observer.TaskFinished(t.res) }()

	target, err := database.ParseTarget(task.Server)
	if err != nil {
		t.fail(errs.ErrKindInvalidInput, "could not parse server entry", "", err)
		return t.res
	}

	sess, err := w.connector.Connect(ctx, target)
	if err != nil {
		t.fail(errs.ErrKindConnectionFailed, "could not connect", "", err)
		return t.res
	}
	defer func() {
		if err := sess.Close(); err != nil {
			w.log.With().Str("server", task.Server).Err(err).Logger().Debug("close failed")
		}
	}()

	if task.Scope.Kind == database.ScopeDefault {
		t.query(ctx, sess, "")
		return t.res
	}

	dbs, err := task.Scope.Resolve(ctx, sess)
	if err != nil {
		t.fail(errs.ErrKindListDatabases, "could not get list of databases", "", err)
	}

	for _, db := range dbs {
		if err := sess.UseDatabase(ctx, db); err != nil {
			t.fail(errs.ErrKindSelectDatabase, "could not select db", db, err)
			continue
		}
		if !t.query(ctx, sess, db) {
			break
		}
	}
	return t.res
}

// run is the state of one task execution.
type run struct {
	w    *Worker
	task Task
	res  Result
	enc  *encode.Encoder
}

// query runs the task's query with db as the output's database column.
// It returns false once the output is broken.
func (t *run) query(ctx context.Context, sess database.Session, db string) bool {
	emit := func(fields [][]byte) error {
		if err := t.w.out.Write(t.enc.Encode(t.task.Server, db, fields)); err != nil {
			return errors.Join(errAborted, err)
		}
		t.res.Rows++
		t.w.observer.Row(t.task.Server)
		return nil
	}
	report := func(err error) {
		t.fail(errs.ErrKindUnknown, "could not execute query", db, err)
	}

	if err := sess.Run(ctx, t.task.Query, emit, report); err != nil {
		t.res.Aborted = true
		return false
	}
	return true
}

// fail logs err tagged with the task's server and db. kind classifies the
// failure point; ErrKindUnknown keeps the kind the driver assigned.
func (t *run) fail(kind errs.ErrKind, msg, db string, err error) {
	var e *errs.Error
	if kind == errs.ErrKindUnknown && errors.As(err, &e) {
		e = e.On(t.task.Server, db)
	} else {
		e = errs.Wrap(kind, msg, err).On(t.task.Server, db)
	}

	t.res.Failures++
	t.w.observer.Failure(e)

	fields := map[string]interface{}{
		"server": t.task.Server,
		"kind":   e.Kind.String(),
	}
	if db != "" {
		fields["database"] = db
	}
	t.w.log.WarnWith(e.Message, unwrapCause(e), fields)
}

// unwrapCause returns the innermost driver message so log lines stay short.
func unwrapCause(e *errs.Error) error {
	if e.Cause != nil {
		return e.Cause
	}
	return errors.New(e.Message)
}

type nopObserver struct{}

func (nopObserver) TaskStarted(string)  {}
func (nopObserver) TaskFinished(Result) {}
func (nopObserver) Failure(*errs.Error) {}
func (nopObserver) Row(string)          {}
