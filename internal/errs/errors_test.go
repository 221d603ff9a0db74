package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("Access denied for user 'ro'")

	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "no target",
			err:      New(ErrKindInvalidInput, "need query"),
			expected: "[invalid_input] need query",
		},
		{
			name:     "server only",
			err:      Wrap(ErrKindConnectionFailed, "could not connect", cause).On("db1:3307", ""),
			expected: "[connection_failed] db1:3307: could not connect: Access denied for user 'ro'",
		},
		{
			name:     "server and database",
			err:      New(ErrKindSelectDatabase, "could not select db").On("db1", "shop"),
			expected: "[select_database] db1/shop: could not select db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_OnCopies(t *testing.T) {
	base := New(ErrKindQueryFailed, "statement failed")
	tagged := base.On("db2", "audit")

	assert.Empty(t, base.Server)
	assert.Equal(t, "db2", tagged.Server)
	assert.Equal(t, "audit", tagged.Database)
	assert.Equal(t, base.Kind, tagged.Kind)
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("task: %w", New(ErrKindListDatabases, "show databases"))

	assert.True(t, IsListDatabases(wrapped))
	assert.False(t, IsSelectDatabase(wrapped))
	assert.True(t, IsOutput(Wrap(ErrKindOutput, "write", errors.New("broken pipe"))))
	assert.True(t, IsTimeout(New(ErrKindTimeout, "slow")))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}

func TestWrap_InheritsKind(t *testing.T) {
	inner := New(ErrKindPermissionDenied, "denied")
	outer := Wrap(ErrKindUnknown, "could not read servers", inner)

	assert.True(t, IsPermissionDenied(outer))
	assert.ErrorIs(t, outer, inner)
}
