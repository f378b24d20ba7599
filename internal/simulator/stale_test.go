package simulator

import (
	"testing"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleGenerationCannotWrite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = time.Hour
	e, err := New(cfg, WithSeed(1))
	require.NoError(t, err)
	defer e.Close()

	_, err = e.OpenView("Fan 1-1")
	require.NoError(t, err)

	e.mu.Lock()
	oldGen := e.views["Fan 1-1"].gen
	e.mu.Unlock()

	// a speed change rearms the loop with a new generation
	_, err = e.SetSpeed("Fan 1-1", 2600)
	require.NoError(t, err)

	before, err := e.View("Fan 1-1")
	require.NoError(t, err)

	_, err = e.step("Fan 1-1", oldGen)
	assert.True(t, errors.HasCode(err, ErrStaleView))

	after, err := e.View("Fan 1-1")
	require.NoError(t, err)
	assert.Equal(t, before.Samples, after.Samples)

	// reopening also invalidates the previous loop
	e.mu.Lock()
	gen := e.views["Fan 1-1"].gen
	e.mu.Unlock()
	_, err = e.OpenView("Fan 1-1")
	require.NoError(t, err)
	_, err = e.step("Fan 1-1", gen)
	assert.True(t, errors.HasCode(err, ErrStaleView))
}
