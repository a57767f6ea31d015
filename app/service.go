package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/robsolve/config"
	"github.com/kilianp07/robsolve/core/backend/compiled"
	"github.com/kilianp07/robsolve/core/backend/interpreted"
	coremetrics "github.com/kilianp07/robsolve/core/metrics"
	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/core/simulate"
	"github.com/kilianp07/robsolve/core/solve"
	"github.com/kilianp07/robsolve/infra/logger"
	"github.com/kilianp07/robsolve/infra/metrics"
)

// Service wires the solve pipeline from configuration.
type Service struct {
	Orchestrator *solve.Orchestrator
	Simulator    *simulate.MonteCarlo
	cfg          *config.Config
	sink         coremetrics.MetricsSink
	log          logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	diagLog := cfg.Solve.DiagnosticLogPath()
	compCfg := cfg.Compiled
	compCfg.DiagnosticLog = diagLog
	comp := compiled.New(compCfg, logger.New("compiled-backend"))
	interp := interpreted.New(diagLog, logger.New("interpreted-backend"))
	sim := simulate.NewMonteCarlo(cfg.Simulation, logger.New("simulator"))
	orch, err := solve.NewOrchestrator(comp, interp, sim, solve.Paths{
		DiagnosticLog: diagLog,
		Solution:      cfg.Solve.SolutionPath(),
	}, sink, logger.New("solve"))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return &Service{Orchestrator: orch, Simulator: sim, cfg: cfg, sink: sink, log: logg}, nil
}

// Solve runs the pipeline on m.
func (s *Service) Solve(ctx context.Context, m *model.Model) (*model.Model, error) {
	return s.Orchestrator.Solve(ctx, m)
}

// ServeMetrics exposes /metrics until ctx is cancelled. It returns
// immediately when no listen address is configured.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if s.cfg.Metrics.ListenAddr == "" {
		return nil
	}
	s.log.Infof("serving metrics on %s", s.cfg.Metrics.ListenAddr)
	return metrics.StartPromServer(ctx, s.cfg.Metrics.ListenAddr, nil)
}

type closer interface{ Close() }

// Close releases resources held by the metrics sinks.
func (s *Service) Close() error {
	sinks := []coremetrics.MetricsSink{s.sink}
	if multi, ok := s.sink.(*coremetrics.MultiSink); ok {
		sinks = multi.Sinks
	}
	for _, sink := range sinks {
		if c, ok := sink.(closer); ok {
			c.Close()
		}
	}
	return nil
}
