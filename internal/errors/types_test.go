package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocErrorError(t *testing.T) {
	t.Run("code and message", func(t *testing.T) {
		err := NewNotFoundError(ErrCodeStoryNotFound, "story button--primary not found")
		assert.Equal(t, "[ERR_STORY_NOT_FOUND] story button--primary not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("open button.templ: no such file")
		err := NewSourceUnavailableError("source unavailable", cause)

		assert.Contains(t, err.Error(), "source unavailable")
		assert.Contains(t, err.Error(), "no such file")
		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})
}

func TestDocErrorIs(t *testing.T) {
	a := NewConfigurationConflictError(ErrCodeToolbarMultiChild, "first")
	b := NewConfigurationConflictError(ErrCodeToolbarMultiChild, "second")
	c := NewValidationError(ErrCodeToolbarMultiChild, "other type")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeFileNotFound, "read"))

	wrapped := Wrap(fmt.Errorf("boom"), ErrorTypeIO, ErrCodeFileNotFound, "read manifest")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeIO, wrapped.Type)
	assert.True(t, IsType(fmt.Errorf("outer: %w", wrapped), ErrorTypeIO))
}

func TestWithContext(t *testing.T) {
	err := NewValidationError(ErrCodeManifestInvalid, "bad columns").
		WithContext("block", 2).
		WithContext("columns", 0)

	assert.Equal(t, 2, err.Context["block"])
	assert.Equal(t, 0, err.Context["columns"])
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError(ErrCodePageNotFound, "missing")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

type recordingLogger struct {
	warns  []string
	errors []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errors = append(r.errors, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, nil)
	handler.Handle(ctx, NewSourceUnavailableError("no source", nil))
	handler.Handle(ctx, NewConfigurationConflictError(ErrCodeToolbarMultiChild, "toolbar"))
	handler.Handle(ctx, NewIOError(ErrCodeFileNotFound, "io", errors.New("eof")))
	handler.Handle(ctx, errors.New("plain"))

	assert.Len(t, logger.warns, 2)
	assert.Len(t, logger.errors, 2)
}
