package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/ventsim/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Invalid log level", f.New(errors.ErrInvalidLogLevel).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Invalid argument provided: fan speed",
		f.WithData(errors.ErrInvalidArgument, "fan speed").Error())
	assert.Equal(t, "unknown_code", f.New(errors.ErrorCode("unknown_code")).Error())
}

func TestWrapKeepsCause(t *testing.T) {
	f := errors.New()
	cause := fmt.Errorf("disk full")

	err := f.Wrap(errors.ErrOperationFailed, cause)

	assert.Equal(t, "Operation failed: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsMatchesByCode(t *testing.T) {
	f := errors.New()
	wrapped := fmt.Errorf("context: %w", f.WithData(errors.ErrResourceNotFound, "fan 9-9"))

	assert.True(t, errors.Is(wrapped, f.New(errors.ErrResourceNotFound)))
	assert.False(t, errors.Is(wrapped, f.New(errors.ErrInvalidArgument)))
	assert.Equal(t, errors.ErrResourceNotFound, errors.CodeOf(wrapped))
	assert.True(t, errors.HasCode(wrapped, errors.ErrResourceNotFound))
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(fmt.Errorf("plain")))
}
