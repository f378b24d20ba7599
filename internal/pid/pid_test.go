package pid_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")

	require.NoError(t, pid.Write(dir))

	bytes, err := os.ReadFile(pid.Path(dir))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(bytes))

	// this process is still alive
	err = pid.Write(dir)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))

	require.NoError(t, pid.Remove(dir))
	_, err = os.Stat(pid.Path(dir))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, pid.Remove(dir), "removing twice is fine")
}

func TestWriteReplacesStaleFile(t *testing.T) {
	dir := t.TempDir()

	for _, content := range []string{"999999999", "garbage", ""} {
		require.NoError(t, os.WriteFile(pid.Path(dir), []byte(content), 0o600))
		require.NoError(t, pid.Write(dir), "content %q", content)
	}
}

func TestPathDefaultsToTempDir(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "ventsim.pid"), pid.Path(""))
}
