// Package simulate produces agent trajectories from a solved model.
package simulate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/infra/logger"
	"github.com/kilianp07/robsolve/pkg/export"
)

// ErrNotSolved is returned when the model carries no solution.
var ErrNotSolved = errors.New("model is not solved")

// Simulator consumes a solved model.
type Simulator interface {
	Simulate(ctx context.Context, m *model.Model) error
}

// Config defines where simulated trajectories are written.
type Config struct {
	Output string        `json:"output"`
	Format export.Format `json:"format"`
}

// MonteCarlo simulates num_agents agents forward through the EMAX table.
// Every agent starts in state 0 and picks the choice with the highest
// shocked value in each period.
type MonteCarlo struct {
	cfg Config
	log logger.Logger
	// Last holds the trajectories of the most recent run.
	Last []model.Step
}

// NewMonteCarlo returns a simulator writing to cfg.Output. An empty output
// path keeps results in memory only.
func NewMonteCarlo(cfg Config, log logger.Logger) *MonteCarlo {
	if cfg.Format == "" {
		cfg.Format = export.FormatCSV
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &MonteCarlo{cfg: cfg, log: log}
}

// Simulate draws trajectories and writes them to the configured output.
func (s *MonteCarlo) Simulate(ctx context.Context, m *model.Model) error {
	sol := m.Solution()
	if !m.IsSolved() || sol == nil {
		return ErrNotSolved
	}
	a := m.Attributes()
	steps, err := Trajectories(ctx, a, sol)
	if err != nil {
		return err
	}
	s.Last = steps
	s.log.Debugf("simulated %d agents over %d periods", a.NumAgents, a.NumPeriods)
	if s.cfg.Output == "" {
		return nil
	}
	return s.write(steps)
}

func (s *MonteCarlo) write(steps []model.Step) error {
	f, err := os.Create(s.cfg.Output)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := export.Write(w, s.cfg.Format, steps); err != nil {
		_ = f.Close()
		return fmt.Errorf("export %s: %w", s.cfg.Output, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Trajectories simulates a.NumAgents agents. Shocks are seeded per agent.
func Trajectories(ctx context.Context, a model.Attributes, sol *model.Solution) ([]model.Step, error) {
	if len(sol.EMAX) != a.NumPeriods {
		return nil, fmt.Errorf("solution has %d periods, want %d", len(sol.EMAX), a.NumPeriods)
	}
	steps := make([]model.Step, 0, a.NumAgents*a.NumPeriods)
	values := make([]float64, a.NumChoices)
	shocks := make([]float64, a.NumChoices)
	for i := 0; i < a.NumAgents; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(a.Seed, uint64(i)+1<<32)}
		state := 0
		for t := 0; t < a.NumPeriods; t++ {
			for c := range values {
				shocks[c] = dist.Rand() * a.ShockSD[c]
				values[c] = a.Rewards[c][state] + shocks[c]
				if t < a.NumPeriods-1 {
					values[c] += a.Discount * sol.EMAX[t+1][a.Transitions[c][state]]
				}
			}
			choice := floats.MaxIdx(values)
			steps = append(steps, model.Step{
				Agent:  i,
				Period: t,
				State:  state,
				Choice: choice,
				Reward: a.Rewards[choice][state] + shocks[choice],
			})
			state = a.Transitions[choice][state]
		}
	}
	return steps, nil
}
