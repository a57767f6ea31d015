package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/robsolve/core/backend"
	"github.com/kilianp07/robsolve/core/metrics"
	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/core/simulate"
	"github.com/kilianp07/robsolve/infra/logger"
)

// Stages reported in metrics when a solve fails.
const (
	StagePrecondition = "precondition"
	StageBackend      = "backend"
	StageDiagnostics  = "diagnostics"
	StageFlag         = "flag"
	StageSimulate     = "simulate"
	StageStore        = "store"
)

// Paths locates the files a solve reads and writes.
type Paths struct {
	DiagnosticLog string
	Solution      string
}

// Orchestrator sequences one solve: cleanup, backend dispatch, ambiguity
// diagnostics, solved flag, simulation and persistence.
type Orchestrator struct {
	backends  map[model.BackendKind]backend.Solver
	simulator simulate.Simulator
	paths     Paths
	sink      metrics.MetricsSink
	log       logger.Logger
	now       func() time.Time
}

// NewOrchestrator wires an orchestrator. Both backends and the simulator are
// required; a nil sink or logger disables metrics or logging.
func NewOrchestrator(compiled, interpreted backend.Solver, sim simulate.Simulator, paths Paths, sink metrics.MetricsSink, log logger.Logger) (*Orchestrator, error) {
	if compiled == nil || interpreted == nil {
		return nil, fmt.Errorf("both backends are required")
	}
	if sim == nil {
		return nil, fmt.Errorf("simulator is required")
	}
	if paths.DiagnosticLog == "" || paths.Solution == "" {
		return nil, fmt.Errorf("diagnostic log and solution paths are required")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Orchestrator{
		backends: map[model.BackendKind]backend.Solver{
			model.BackendCompiled:    compiled,
			model.BackendInterpreted: interpreted,
		},
		simulator: sim,
		paths:     paths,
		sink:      sink,
		log:       log,
		now:       time.Now,
	}, nil
}

// Solve runs the solve pipeline on m and returns the model produced by the
// backend, marked solved and locked. A model that is not ready yields a
// *PreconditionError before any side effect. Backend errors are returned
// unchanged.
func (o *Orchestrator) Solve(ctx context.Context, m *model.Model) (*model.Model, error) {
	if m == nil {
		return nil, &PreconditionError{Reason: "nil model"}
	}
	if !m.Status() {
		reason := "status check failed"
		if err := m.Validate(); err != nil {
			reason = err.Error()
		}
		return nil, &PreconditionError{Reason: reason}
	}
	runID := uuid.NewString()
	log := o.log.With("run_id", runID)
	start := o.now()
	ev := metrics.SolveEvent{RunID: runID}

	Cleanup(o.paths.DiagnosticLog, log)

	ambiguous := m.IsAmbiguous()
	kind := m.Backend()
	debug := m.IsDebug()
	store := m.ShouldStore()
	ev.Backend, ev.Ambiguous, ev.Periods = kind, ambiguous, m.NumPeriods()

	out, stage, err := o.run(ctx, m, log, runID, kind, ambiguous && debug, store)
	ev.Stage, ev.Err = stage, err
	ev.Duration = o.now().Sub(start)
	ev.Time = o.now()
	if rerr := o.sink.RecordSolve(ev); rerr != nil {
		log.Warnf("record solve metrics: %v", rerr)
	}
	log.Debugw("solve finished", map[string]any{
		"backend":     kind.String(),
		"ambiguous":   ambiguous,
		"periods":     ev.Periods,
		"duration_ms": ev.Duration.Milliseconds(),
		"stage":       stage,
		"success":     ev.Success(),
	})
	if err != nil {
		log.Errorf("solve failed at %s: %v", stage, err)
		return nil, err
	}
	log.Infof("solved %d periods with %s backend in %s", ev.Periods, kind, ev.Duration)
	return out, nil
}

// run performs steps 3 to 7 and reports the stage that failed.
func (o *Orchestrator) run(ctx context.Context, m *model.Model, log logger.Logger, runID string, kind model.BackendKind, summarize, store bool) (*model.Model, string, error) {
	solver, ok := o.backends[kind]
	if !ok {
		return nil, StagePrecondition, &PreconditionError{Reason: fmt.Sprintf("no backend for %s", kind)}
	}
	log.Debugf("dispatching to %s backend", kind)
	out, err := solver.Solve(ctx, m)
	if err != nil {
		return nil, StageBackend, err
	}
	if out == nil {
		out = m
	}

	if summarize {
		summary, err := SummarizeAmbiguity(o.paths.DiagnosticLog, out.NumPeriods())
		if err != nil {
			return nil, StageDiagnostics, err
		}
		o.recordAmbiguity(log, runID, kind, summary)
	}

	if err := markSolved(out); err != nil {
		return nil, StageFlag, err
	}

	if err := o.simulator.Simulate(ctx, out); err != nil {
		return nil, StageSimulate, fmt.Errorf("simulate: %w", err)
	}

	if store {
		if err := out.Store(o.paths.Solution); err != nil {
			return nil, StageStore, fmt.Errorf("store solution: %w", err)
		}
		log.Debugf("stored solution at %s", o.paths.Solution)
	}
	return out, "", nil
}

// markSolved sets is_solved inside an unlock/lock pair. The model is locked
// again whatever the outcome.
func markSolved(m *model.Model) error {
	m.Unlock()
	defer m.Lock()
	return m.SetSolved(true)
}

func (o *Orchestrator) recordAmbiguity(log logger.Logger, runID string, kind model.BackendKind, s Summary) {
	ev := metrics.AmbiguityEvent{RunID: runID, Backend: kind, Time: o.now()}
	failures := 0
	for _, p := range s.Periods {
		ev.Periods = append(ev.Periods, metrics.PeriodOutcome{Period: p.Period, Success: p.Success, Failure: p.Failure})
		failures += p.Failure
	}
	if failures > 0 {
		log.Warnf("%d ambiguity optimisations did not converge", failures)
	}
	rec, ok := o.sink.(metrics.AmbiguityRecorder)
	if !ok {
		return
	}
	if err := rec.RecordAmbiguity(ev); err != nil {
		log.Warnf("record ambiguity metrics: %v", err)
	}
}
