package metrics

import (
	"strconv"

	coremetrics "github.com/kilianp07/robsolve/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	solves     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	optimizers *prometheus.CounterVec
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_runs_total",
		Help: "Total number of solve runs",
	}, []string{"backend", "ambiguous", "success", "stage"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Wall time of a solve run including simulation",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"backend", "ambiguous"})
	optimizers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_ambiguity_optimizations_total",
		Help: "Ambiguity optimisations by period and outcome",
	}, []string{"backend", "period", "outcome"})

	var err error
	if solves, err = register(reg, solves); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if optimizers, err = register(reg, optimizers); err != nil {
		return nil, err
	}
	return &PromSink{solves: solves, duration: duration, optimizers: optimizers}, nil
}

// register returns the already registered collector when c is a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve counts the run and observes its duration.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	backend := ev.Backend.String()
	ambiguous := strconv.FormatBool(ev.Ambiguous)
	s.solves.WithLabelValues(backend, ambiguous, strconv.FormatBool(ev.Success()), ev.Stage).Inc()
	s.duration.WithLabelValues(backend, ambiguous).Observe(ev.Duration.Seconds())
	return nil
}

// RecordAmbiguity adds the per-period optimisation outcomes.
func (s *PromSink) RecordAmbiguity(ev coremetrics.AmbiguityEvent) error {
	backend := ev.Backend.String()
	for _, p := range ev.Periods {
		period := strconv.Itoa(p.Period)
		s.optimizers.WithLabelValues(backend, period, "success").Add(float64(p.Success))
		s.optimizers.WithLabelValues(backend, period, "failure").Add(float64(p.Failure))
	}
	return nil
}
