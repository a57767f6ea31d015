// Package interpreted solves models in process. Expected values are
// integrated by Monte-Carlo over normal shocks; under ambiguity the mean of
// the shocks is chosen adversarially inside a box of radius ambiguity_level.
package interpreted

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kilianp07/robsolve/core/backend"
	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/infra/logger"
)

// Backend implements backend.Solver without leaving the process.
type Backend struct {
	// DiagnosticLog receives one record per ambiguity optimisation when the
	// model is both ambiguous and in debug mode.
	DiagnosticLog string
	log           logger.Logger
}

// New returns an interpreted backend writing diagnostics to diagnosticLog.
func New(diagnosticLog string, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Backend{DiagnosticLog: diagnosticLog, log: log}
}

// Solve runs backward induction and attaches the solution to m.
// A diagnostic log that cannot be fully written fails the solve.
func (b *Backend) Solve(ctx context.Context, m *model.Model) (out *model.Model, err error) {
	attrs := m.Attributes()
	var diag io.Writer = io.Discard
	if attrs.IsDebug && attrs.IsAmbiguous {
		f, ferr := os.OpenFile(b.DiagnosticLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if ferr != nil {
			return nil, b.fail(ferr)
		}
		w := bufio.NewWriter(f)
		defer func() {
			werr := w.Flush()
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil && err == nil {
				out, err = nil, b.fail(fmt.Errorf("write diagnostic log: %w", werr))
			}
		}()
		diag = w
	}

	sol, err := backwardInduction(ctx, attrs, diag)
	if err != nil {
		return nil, b.fail(err)
	}
	if err := backend.Attach(m, sol); err != nil {
		return nil, b.fail(err)
	}
	b.log.Debugf("interpreted backend solved %d periods", attrs.NumPeriods)
	return m, nil
}

func (b *Backend) fail(err error) error {
	return &backend.Error{Backend: model.BackendInterpreted, Err: err}
}
