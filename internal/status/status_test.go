package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/logger"
	"github.com/koustreak/pmysql/internal/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	m := NewMetrics()

	m.TaskStarted("a")
	m.Row("a")
	m.Row("a")
	m.TaskFinished(worker.Result{Server: "a", Rows: 2})

	m.TaskStarted("b")
	m.Failure(errs.New(errs.ErrKindConnectionFailed, "refused").On("b", ""))
	m.TaskFinished(worker.Result{Server: "b", Failures: 1})

	m.TaskStarted("c")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Started)
	assert.Equal(t, int64(2), snap.Finished)
	assert.Equal(t, int64(1), snap.InFlight)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, int64(2), snap.Rows)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksFinished.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksFinished.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("connection_failed")))
}

func TestMetrics_Aborted(t *testing.T) {
	m := NewMetrics()
	m.TaskStarted("a")
	m.TaskFinished(worker.Result{Server: "a", Failures: 1, Aborted: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksFinished.WithLabelValues("aborted")))
	assert.Equal(t, int64(1), m.Snapshot().Failed)
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.TaskStarted("s")
			for j := 0; j < 10; j++ {
				m.Row("s")
			}
			m.TaskFinished(worker.Result{Server: "s", Rows: 10})
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.Finished)
	assert.Equal(t, int64(500), snap.Rows)
	assert.Zero(t, snap.InFlight)
}

func newTestServer(t *testing.T) (*Metrics, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	m := NewMetrics()
	s := NewServer("127.0.0.1:0", m, logger.New(&logger.Config{Level: "debug", Format: "json", Output: logs}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return m, ts, logs
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Healthz(t *testing.T) {
	_, ts, logs := newTestServer(t)

	code, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
	assert.Contains(t, logs.String(), `"path":"/healthz"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestServer_Status(t *testing.T) {
	m, ts, _ := newTestServer(t)
	m.TaskStarted("a")
	m.Row("a")

	code, body := get(t, ts.URL+"/status")
	require.Equal(t, http.StatusOK, code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, int64(1), snap.Started)
	assert.Equal(t, int64(1), snap.InFlight)
	assert.Equal(t, int64(1), snap.Rows)
}

func TestServer_Metrics(t *testing.T) {
	m, ts, _ := newTestServer(t)
	m.TaskStarted("a")
	m.TaskFinished(worker.Result{Server: "a"})

	code, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "pmysql_tasks_started_total 1")
	assert.Contains(t, body, `pmysql_tasks_finished_total{outcome="ok"} 1`)
}

func TestServer_NotFound(t *testing.T) {
	_, ts, _ := newTestServer(t)

	code, _ := get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_StartShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", NewMetrics(), logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard}))
	require.NoError(t, s.Start())

	code, _ := get(t, "http://"+s.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	require.NoError(t, s.Shutdown(context.Background()))
	_, err := http.Get("http://" + s.Addr() + "/healthz")
	assert.Error(t, err)
}

func TestServer_StartBadAddr(t *testing.T) {
	s := NewServer("256.0.0.1:bad", NewMetrics(), nil)
	err := s.Start()
	require.Error(t, err)
	var e *errs.Error
	assert.True(t, errors.As(err, &e))
}
