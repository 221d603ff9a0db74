// Package sink serializes output lines from many workers onto one stream.
package sink

import (
	"errors"
	"io"
	"sync"

	"github.com/koustreak/pmysql/internal/errs"
)

// maxEmptyWrites bounds consecutive writes that make no progress.
const maxEmptyWrites = 100

// Sink is the single shared destination of a run. Each Write lands
// contiguously; lines from different callers never interleave, but their
// relative order is unspecified.
//
// A failed write is unrecoverable: the sink hands the error to its fatal
// handler once and rejects every later Write.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	onFatal func(error)
	err     error
	lines   int64
}

// New returns a Sink writing to w. onFatal runs, with the sink locked, on
// the first write failure; the command passes a handler that exits.
func New(w io.Writer, onFatal func(error)) *Sink {
	return &Sink{w: w, onFatal: onFatal}
}

// Write appends line atomically with respect to other Write calls.
func (s *Sink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	if err := writeFull(s.w, line); err != nil {
		s.err = errs.Wrap(errs.ErrKindOutput, "could not write output data", err)
		if s.onFatal != nil {
			s.onFatal(s.err)
		}
		return s.err
	}
	s.lines++
	return nil
}

// Lines returns the number of lines written so far.
func (s *Sink) Lines() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

// Err returns the failure that broke the sink, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// writeFull keeps writing until p is consumed. A short write is retried
// rather than treated as success.
func writeFull(w io.Writer, p []byte) error {
	empty := 0
	for len(p) > 0 {
		n, err := w.Write(p)
		if n < 0 || n > len(p) {
			return errors.New("invalid write count")
		}
		p = p[n:]

		if err != nil && !errors.Is(err, io.ErrShortWrite) {
			return err
		}
		if n > 0 {
			empty = 0
			continue
		}
		if empty++; empty >= maxEmptyWrites {
			return io.ErrNoProgress
		}
	}
	return nil
}
