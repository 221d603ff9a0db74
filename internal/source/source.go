// Package source opens the inputs of a run: the server list and the query.
// Both may come from a local file or an object store; the server list may
// also come from stdin.
package source

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/filestore"
)

// Stdin names standard input as a location.
const Stdin = "-"

// Opener resolves locations to readers.
type Opener struct {
	Stdin io.Reader
	// Store serves minio:// locations. Nil disables them.
	Store filestore.Store
}

// Open returns a reader for location: "" or "-" for stdin, minio://bucket/key
// for an object, anything else for a local file.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch {
	case location == "" || location == Stdin:
		in := o.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil

	case filestore.IsRemote(location):
		loc, err := filestore.ParseLocation(location)
		if err != nil {
			return nil, err
		}
		if o.Store == nil {
			return nil, errs.New(errs.ErrKindInvalidInput, "object storage is not configured, cannot read "+location)
		}
		return o.Store.GetObject(ctx, loc.Bucket, loc.Key)
	}

	f, err := os.Open(location)
	if err != nil {
		kind := errs.ErrKindInvalidInput
		if errors.Is(err, fs.ErrNotExist) {
			kind = errs.ErrKindNotFound
		}
		return nil, errs.Wrap(kind, "could not open "+location, err)
	}
	return f, nil
}

// ReadAll returns the whole content at location.
func (o *Opener) ReadAll(ctx context.Context, location string) (string, error) {
	r, err := o.Open(ctx, location)
	if err != nil {
		return "", err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "could not read "+location, err)
	}
	return string(b), nil
}

// EachLine calls fn for every line of r with the trailing newline removed.
// Empty lines are passed through. A final line without a newline counts.
// It stops at the first error from fn.
func EachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(strings.TrimSuffix(line, "\n")); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "could not read server list", err)
		}
	}
}
