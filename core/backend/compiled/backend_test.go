package compiled

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robsolve/core/backend"
	"github.com/kilianp07/robsolve/core/model"
)

func testModel(periods int) *model.Model {
	return model.New(model.Attributes{
		Backend:     model.BackendCompiled,
		NumPeriods:  periods,
		NumStates:   1,
		NumChoices:  1,
		Rewards:     [][]float64{{1}},
		Transitions: [][]int{{0}},
		ShockSD:     []float64{0},
		NumDraws:    1,
	})
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(dir, "solver.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestBackend_Solve(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `test -f "$1" || exit 3
echo '{"emax":[[2.5],[1.0]]}' > "$2"
`)
	b := New(Config{Executable: exe, WorkDir: dir}, nil)
	m, err := b.Solve(context.Background(), testModel(2))
	require.NoError(t, err)
	assert.True(t, m.Locked())
	assert.Equal(t, [][]float64{{2.5}, {1.0}}, m.Solution().EMAX)

	_, err = os.Stat(filepath.Join(dir, inputFile))
	assert.True(t, os.IsNotExist(err), "exchange files are removed")
}

func TestBackend_ExitFailure(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, "echo 'singular matrix' >&2\nexit 1\n")
	_, err := New(Config{Executable: exe, WorkDir: dir}, nil).Solve(context.Background(), testModel(1))
	var be *backend.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, model.BackendCompiled, be.Backend)
	assert.Contains(t, err.Error(), "singular matrix")
}

func TestBackend_WrongPeriods(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, `echo '{"emax":[[1]]}' > "$2"`+"\n")
	_, err := New(Config{Executable: exe, WorkDir: dir}, nil).Solve(context.Background(), testModel(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3")
}

func TestBackend_NoExecutable(t *testing.T) {
	_, err := New(Config{WorkDir: t.TempDir()}, nil).Solve(context.Background(), testModel(1))
	assert.ErrorIs(t, err, ErrNoExecutable)
}

func TestBackend_PassesDiagnosticLog(t *testing.T) {
	dir := t.TempDir()
	logDir := t.TempDir()
	exe := writeScript(t, dir, `printf 'PERIOD 0\nSuccess True\n' >> "$ROBSOLVE_DIAGNOSTIC_LOG"
echo '{"emax":[[1.0]]}' > "$2"
`)
	diag := filepath.Join(logDir, "diag.log")
	_, err := New(Config{Executable: exe, WorkDir: dir, DiagnosticLog: diag}, nil).Solve(context.Background(), testModel(1))
	require.NoError(t, err)

	b, err := os.ReadFile(diag)
	require.NoError(t, err)
	assert.Equal(t, "PERIOD 0\nSuccess True\n", string(b))
}
