package solve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robsolve/infra/logger"
)

func TestCleanup_RemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ambiguity.log")
	require.NoError(t, os.WriteFile(path, []byte("PERIOD 0\n"), 0644))
	Cleanup(path, logger.NopLogger{})
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanup_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ambiguity.log")
	Cleanup(path, nil)
	Cleanup(path, nil)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanup_SwallowsOtherFailures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ambiguity.log")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep"), nil, 0644))
	// Removing a non-empty directory fails; Cleanup must not panic or block.
	Cleanup(dir, nil)
	_, err := os.Stat(dir)
	assert.NoError(t, err)
}
