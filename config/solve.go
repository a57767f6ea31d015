package config

import (
	"fmt"
	"path/filepath"
)

// SolveConfig locates the files shared by one solve.
type SolveConfig struct {
	// WorkDir is the directory holding the diagnostic log and solution.
	// Only one solve may run per directory at a time.
	WorkDir string `json:"work_dir"`
	// DiagnosticLog is written by the backend in ambiguous debug runs.
	DiagnosticLog string `json:"diagnostic_log"`
	// Solution receives the persisted model when the model asks for it.
	Solution string `json:"solution"`
}

// SetDefaults applies sane defaults.
func (c *SolveConfig) SetDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.DiagnosticLog == "" {
		c.DiagnosticLog = "ambiguity.log"
	}
	if c.Solution == "" {
		c.Solution = "solution.json"
	}
}

// Validate checks mandatory fields.
func (c SolveConfig) Validate() error {
	if c.DiagnosticLog == "" {
		return fmt.Errorf("diagnostic_log is required")
	}
	if c.Solution == "" {
		return fmt.Errorf("solution is required")
	}
	if filepath.Clean(c.Resolve(c.DiagnosticLog)) == filepath.Clean(c.Resolve(c.Solution)) {
		return fmt.Errorf("diagnostic_log and solution must differ")
	}
	return nil
}

// Resolve joins relative paths to WorkDir.
func (c SolveConfig) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

// DiagnosticLogPath is the resolved diagnostic log location.
func (c SolveConfig) DiagnosticLogPath() string { return c.Resolve(c.DiagnosticLog) }

// SolutionPath is the resolved solution location.
func (c SolveConfig) SolutionPath() string { return c.Resolve(c.Solution) }
