// Package compiled delegates backward induction to an external executable.
//
// The executable is invoked as
//
//	<executable> [args...] <model.json> <solution.json>
//
// in the configured working directory. It reads the model written by
// model.Store, writes a JSON encoded model.Solution and, for ambiguous debug
// runs, appends its diagnostics to the file named by ROBSOLVE_DIAGNOSTIC_LOG.
package compiled

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kilianp07/robsolve/core/backend"
	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/infra/logger"
)

const (
	inputFile  = "model.exchange.json"
	outputFile = "solution.exchange.json"

	// DiagnosticLogEnv carries the absolute diagnostic log path to the executable.
	DiagnosticLogEnv = "ROBSOLVE_DIAGNOSTIC_LOG"
)

// ErrNoExecutable is returned when neither the config nor the model names an executable.
var ErrNoExecutable = errors.New("no executable configured")

// Config defines how the external solver is run.
type Config struct {
	Executable string   `json:"executable"`
	Args       []string `json:"args"`
	WorkDir    string   `json:"work_dir"`
	// DiagnosticLog is set by the caller to the log the solve pipeline reads.
	DiagnosticLog string `json:"-"`
}

// Backend implements backend.Solver by running an external program.
type Backend struct {
	cfg Config
	log logger.Logger
}

// New returns a compiled backend.
func New(cfg Config, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Backend{cfg: cfg, log: log}
}

// Solve runs the executable and attaches the solution it produced to m.
func (b *Backend) Solve(ctx context.Context, m *model.Model) (*model.Model, error) {
	exe := b.cfg.Executable
	if v := m.Attributes().Executable; v != "" {
		exe = v
	}
	if exe == "" {
		return nil, b.fail(ErrNoExecutable)
	}
	dir := b.cfg.WorkDir
	if dir == "" {
		dir = "."
	}
	in := filepath.Join(dir, inputFile)
	out := filepath.Join(dir, outputFile)
	defer func() {
		_ = os.Remove(in)
		_ = os.Remove(out)
	}()
	if err := m.Store(in); err != nil {
		return nil, b.fail(fmt.Errorf("write exchange file: %w", err))
	}

	args := append(append([]string{}, b.cfg.Args...), inputFile, outputFile)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = dir
	if b.cfg.DiagnosticLog != "" {
		diag, err := filepath.Abs(b.cfg.DiagnosticLog)
		if err != nil {
			return nil, b.fail(fmt.Errorf("diagnostic log path: %w", err))
		}
		cmd.Env = append(os.Environ(), DiagnosticLogEnv+"="+diag)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	b.log.Debugf("running %s %s", exe, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, b.fail(fmt.Errorf("%w: %s", err, msg))
		}
		return nil, b.fail(err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		return nil, b.fail(fmt.Errorf("read solution: %w", err))
	}
	var sol model.Solution
	if err := json.Unmarshal(raw, &sol); err != nil {
		return nil, b.fail(fmt.Errorf("decode solution: %w", err))
	}
	if len(sol.EMAX) != m.NumPeriods() {
		return nil, b.fail(fmt.Errorf("solution has %d periods, want %d", len(sol.EMAX), m.NumPeriods()))
	}
	if err := backend.Attach(m, &sol); err != nil {
		return nil, b.fail(err)
	}
	return m, nil
}

func (b *Backend) fail(err error) error {
	return &backend.Error{Backend: model.BackendCompiled, Err: err}
}
