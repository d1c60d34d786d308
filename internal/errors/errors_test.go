package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		err := Wrap(ErrNotFound, "key version lookup")
		assert.Error(t, err)
		assert.Equal(t, "key version lookup: not found", err.Error())
		assert.True(t, Is(err, ErrNotFound))
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("preserves chain across multiple wraps", func(t *testing.T) {
		err := Wrap(Wrap(ErrConflict, "inner"), "outer")
		assert.True(t, Is(err, ErrConflict))
	})
}

func TestTransient(t *testing.T) {
	t.Run("marks error as retryable", func(t *testing.T) {
		cause := New("connection refused")
		err := Transient(cause, "failed to update record")
		assert.True(t, Is(err, ErrTransient))
		assert.True(t, Is(err, cause))
		assert.Contains(t, err.Error(), "failed to update record")
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, Transient(nil, "context"))
	})
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrInvalidInput)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.False(t, Is(err, ErrNotFound))
}
