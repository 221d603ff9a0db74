package sink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkWriter accepts at most n bytes per call and reports no error,
// like a pipe under pressure.
type chunkWriter struct {
	buf bytes.Buffer
	n   int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		p = p[:w.n]
	}
	return w.buf.Write(p)
}

type failWriter struct {
	err   error
	calls int
}

func (w *failWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, w.err
}

type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

// Many concurrent writers, each repeating its own marker line, must never
// produce a line mixing two markers.
func TestSink_ConcurrentLinesDoNotInterleave(t *testing.T) {
	const (
		writers = 32
		perLine = 200
		repeats = 300
	)

	out := &chunkWriter{n: 7}
	s := New(out, func(err error) { t.Errorf("unexpected fatal: %v", err) })

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			line := []byte(strings.Repeat(string(rune('A'+id%26)), perLine) + fmt.Sprintf("%02d\n", id))
			for j := 0; j < repeats; j++ {
				assert.NoError(t, s.Write(line))
			}
		}(i)
	}
	wg.Wait()

	counts := make(map[string]int)
	scanner := bufio.NewScanner(&out.buf)
	scanner.Buffer(make([]byte, 0, 1024), 1024)
	for scanner.Scan() {
		line := scanner.Text()
		require.Len(t, line, perLine+2)
		marker := line[0]
		assert.Equal(t, strings.Repeat(string(marker), perLine), line[:perLine], "corrupted line %q", line)
		counts[line]++
	}
	require.NoError(t, scanner.Err())

	assert.Len(t, counts, writers)
	for line, n := range counts {
		assert.Equal(t, repeats, n, line)
	}
	assert.Equal(t, int64(writers*repeats), s.Lines())
}

func TestSink_ShortWritesAreRetried(t *testing.T) {
	out := &chunkWriter{n: 1}
	s := New(out, nil)

	require.NoError(t, s.Write([]byte("db1\tshop\t42\n")))
	assert.Equal(t, "db1\tshop\t42\n", out.buf.String())
}

func TestSink_WriteFailureIsFatalOnce(t *testing.T) {
	w := &failWriter{err: errors.New("broken pipe")}

	var fatal []error
	s := New(w, func(err error) { fatal = append(fatal, err) })

	err := s.Write([]byte("db1\t1\n"))
	require.Error(t, err)
	assert.True(t, errs.IsOutput(err))

	err = s.Write([]byte("db1\t2\n"))
	require.Error(t, err)

	assert.Len(t, fatal, 1)
	assert.Equal(t, 1, w.calls, "no further writes after the sink broke")
	assert.Equal(t, err, s.Err())
	assert.Zero(t, s.Lines())
}

func TestSink_NoProgressIsFatal(t *testing.T) {
	var fatal error
	s := New(stuckWriter{}, func(err error) { fatal = err })

	err := s.Write([]byte("db1\t1\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrNoProgress)
	assert.Equal(t, err, fatal)
}
