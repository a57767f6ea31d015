package metrics

import (
	"time"

	"github.com/kilianp07/robsolve/core/model"
)

// SolveEvent describes one completed or failed solve.
type SolveEvent struct {
	RunID     string
	Backend   model.BackendKind
	Ambiguous bool
	Periods   int
	Duration  time.Duration
	// Stage names the step that failed; empty on success.
	Stage string
	Err   error
	Time  time.Time
}

// Success reports whether the solve completed every step.
func (e SolveEvent) Success() bool { return e.Err == nil }

// PeriodOutcome is the ambiguity optimisation tally of one period.
type PeriodOutcome struct {
	Period  int
	Success int
	Failure int
}

// AmbiguityEvent carries the per-period summary of an ambiguous debug solve.
type AmbiguityEvent struct {
	RunID   string
	Backend model.BackendKind
	Periods []PeriodOutcome
	Time    time.Time
}

// MetricsSink records solve outcomes for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// AmbiguityRecorder records ambiguity summaries.
type AmbiguityRecorder interface {
	RecordAmbiguity(ev AmbiguityEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error         { return nil }
func (NopSink) RecordAmbiguity(AmbiguityEvent) error { return nil }
