package simulate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robsolve/core/model"
	"github.com/kilianp07/robsolve/pkg/export"
)

// Two states: choice 0 stays put with reward 0, choice 1 moves to state 1
// where it earns 10. Without shocks every agent should move then stay.
func solvedModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New(model.Attributes{
		Backend:     model.BackendInterpreted,
		NumPeriods:  2,
		NumStates:   2,
		NumChoices:  2,
		Rewards:     [][]float64{{0, 0}, {1, 10}},
		Transitions: [][]int{{0, 1}, {1, 1}},
		ShockSD:     []float64{0, 0},
		Discount:    0.5,
		NumDraws:    1,
		NumAgents:   3,
	})
	m.Unlock()
	require.NoError(t, m.SetSolution(&model.Solution{EMAX: [][]float64{{6, 15}, {1, 10}}}))
	require.NoError(t, m.SetSolved(true))
	m.Lock()
	return m
}

func TestMonteCarlo_NotSolved(t *testing.T) {
	m := model.New(model.Attributes{NumPeriods: 1})
	err := NewMonteCarlo(Config{}, nil).Simulate(context.Background(), m)
	assert.ErrorIs(t, err, ErrNotSolved)
}

func TestMonteCarlo_Deterministic(t *testing.T) {
	sim := NewMonteCarlo(Config{}, nil)
	require.NoError(t, sim.Simulate(context.Background(), solvedModel(t)))
	require.Len(t, sim.Last, 6)
	for _, s := range sim.Last {
		assert.Equal(t, 1, s.Choice)
		if s.Period == 0 {
			assert.Equal(t, 0, s.State)
			assert.Equal(t, 1.0, s.Reward)
		} else {
			assert.Equal(t, 1, s.State)
			assert.Equal(t, 10.0, s.Reward)
		}
	}
}

func TestMonteCarlo_WritesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "simulation.csv")
	sim := NewMonteCarlo(Config{Output: out, Format: export.FormatCSV}, nil)
	require.NoError(t, sim.Simulate(context.Background(), solvedModel(t)))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 7)
	assert.Equal(t, "agent,period,state,choice,reward", lines[0])
}

func TestTrajectories_PeriodMismatch(t *testing.T) {
	m := solvedModel(t)
	_, err := Trajectories(context.Background(), m.Attributes(), &model.Solution{EMAX: [][]float64{{1, 1}}})
	assert.Error(t, err)
}
