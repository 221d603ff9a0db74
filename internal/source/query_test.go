package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;\nSELECT 2;\n"), 0o600))

	o := &Opener{Store: &memStore{objects: map[string]string{"q/report.sql": "SELECT NOW()"}}}
	ctx := context.Background()

	tests := []struct {
		name    string
		literal string
		file    string
		args    []string
		want    string
	}{
		{name: "literal", literal: "SELECT 1", want: "SELECT 1"},
		{name: "positional", args: []string{"SELECT 2"}, want: "SELECT 2"},
		{name: "file kept verbatim", file: path, want: "SELECT 1;\nSELECT 2;\n"},
		{name: "object", file: "minio://q/report.sql", want: "SELECT NOW()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.LoadQuery(ctx, tt.literal, tt.file, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadQuery_Invalid(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty.sql")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	o := &Opener{}
	ctx := context.Background()

	tests := []struct {
		name    string
		literal string
		file    string
		args    []string
	}{
		{name: "nothing"},
		{name: "literal and file", literal: "SELECT 1", file: "q.sql"},
		{name: "arg and file", file: "q.sql", args: []string{"SELECT 1"}},
		{name: "two args", args: []string{"SELECT 1", "SELECT 2"}},
		{name: "literal and arg", literal: "SELECT 1", args: []string{"SELECT 2"}},
		{name: "empty file", file: empty},
		{name: "empty arg", args: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.LoadQuery(ctx, tt.literal, tt.file, tt.args)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}

	_, err := o.LoadQuery(ctx, "", filepath.Join(t.TempDir(), "missing.sql"), nil)
	assert.True(t, errs.IsNotFound(err))
}
