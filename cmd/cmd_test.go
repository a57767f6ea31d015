package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgPath, modelPath, backendName, serve = "", "model.yaml", "", false
		summaryLog, summaryPeriods, summaryDryRun = "", 0, false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROBSOLVE_SOLVE__WORK_DIR", dir)
	modelFile := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(modelFile, []byte(`
is_ambiguous: true
is_debug: true
store: true
num_periods: 2
num_states: 1
num_choices: 2
rewards: [[1], [0.5]]
transitions: [[0], [0]]
shock_sd: [0.3, 0.3]
ambiguity_level: 0.05
num_draws: 10
num_agents: 2
`), 0o644))

	out, err := execute(t, "solve", "--model", modelFile, "--backend", "interpreted")
	require.NoError(t, err)
	assert.Contains(t, out, "solved 2 periods with INTERPRETED backend")
	assert.Contains(t, out, "solution stored at")
	_, err = os.Stat(filepath.Join(dir, "solution.json"))
	assert.NoError(t, err)
}

func TestSummarizeDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ambiguity.log")
	require.NoError(t, os.WriteFile(path, []byte("PERIOD 0\nSuccess True\n"), 0o644))

	out, err := execute(t, "summarize", "--log", path, "--periods", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "SUMMARY")
	assert.True(t, strings.HasSuffix(out, "         0          1          1          0\n"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "SUMMARY")
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROBSOLVE_SOLVE__WORK_DIR", dir)
	path := filepath.Join(dir, "ambiguity.log")
	require.NoError(t, os.WriteFile(path, []byte("PERIOD 0\n"), 0o644))

	_, err := execute(t, "clean")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
