package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObject struct {
	io.Reader
	info *filestore.ObjectInfo
}

func (o *memObject) Close() error                { return nil }
func (o *memObject) Info() *filestore.ObjectInfo { return o.info }

// memStore serves objects from a map keyed by "bucket/key".
type memStore struct {
	objects map[string]string
}

func (s *memStore) Ping(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

func (s *memStore) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	body, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	return &memObject{Reader: strings.NewReader(body), info: &filestore.ObjectInfo{Key: key, Size: int64(len(body))}}, nil
}

func collect(t *testing.T, input string) []string {
	t.Helper()
	var lines []string
	require.NoError(t, EachLine(strings.NewReader(input), func(line string) error {
		lines = append(lines, line)
		return nil
	}))
	return lines
}

func TestEachLine(t *testing.T) {
	assert.Equal(t, []string{"a", "b:3307"}, collect(t, "a\nb:3307\n"))
	assert.Equal(t, []string{"a", "", "b"}, collect(t, "a\n\nb"))
	assert.Equal(t, []string{"  spaced  "}, collect(t, "  spaced  \n"))
	assert.Nil(t, collect(t, ""))
	assert.Equal(t, []string{""}, collect(t, "\n"))
}

func TestEachLine_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<17)
	assert.Equal(t, []string{long, "y"}, collect(t, long+"\ny\n"))
}

func TestEachLine_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := EachLine(strings.NewReader("a\nb\nc\n"), func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestOpener_Stdin(t *testing.T) {
	o := &Opener{Stdin: strings.NewReader("h1\nh2\n")}

	for _, loc := range []string{"", Stdin} {
		o.Stdin = strings.NewReader("h1\nh2\n")
		got, err := o.ReadAll(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, "h1\nh2\n", got)
	}
}

func TestOpener_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers")
	require.NoError(t, os.WriteFile(path, []byte("db1\n"), 0o600))

	o := &Opener{}
	got, err := o.ReadAll(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "db1\n", got)

	_, err = o.Open(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errs.IsNotFound(err))
}

func TestOpener_Object(t *testing.T) {
	o := &Opener{Store: &memStore{objects: map[string]string{"inv/prod/servers": "db1\ndb2\n"}}}

	got, err := o.ReadAll(context.Background(), "minio://inv/prod/servers")
	require.NoError(t, err)
	assert.Equal(t, "db1\ndb2\n", got)

	_, err = o.Open(context.Background(), "minio://inv/absent")
	assert.True(t, errs.IsNotFound(err))

	_, err = o.Open(context.Background(), "minio://inv")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestOpener_ObjectWithoutStore(t *testing.T) {
	_, err := (&Opener{}).Open(context.Background(), "s3://inv/servers")
	assert.True(t, errs.IsInvalidInput(err))
}
