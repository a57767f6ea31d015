package interpreted

import (
	"context"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/robsolve/core/model"
)

// backwardInduction fills the EMAX table from the last period to the first.
func backwardInduction(ctx context.Context, a model.Attributes, diag io.Writer) (*model.Solution, error) {
	sol := &model.Solution{EMAX: make([][]float64, a.NumPeriods)}
	if a.IsAmbiguous {
		sol.WorstShift = make([][][]float64, a.NumPeriods)
	}
	for t := a.NumPeriods - 1; t >= 0; t-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		draws := shockDraws(a, t)
		sol.EMAX[t] = make([]float64, a.NumStates)
		if a.IsAmbiguous {
			sol.WorstShift[t] = make([][]float64, a.NumStates)
		}
		for s := 0; s < a.NumStates; s++ {
			base := systematic(a, sol, t, s)
			if !a.IsAmbiguous {
				sol.EMAX[t][s] = expectedMax(draws, base, nil)
				continue
			}
			res := worstCase(draws, base, a.AmbiguityLevel)
			if err := res.log(diag, t, s); err != nil {
				return nil, err
			}
			sol.EMAX[t][s] = res.value
			sol.WorstShift[t][s] = res.shift
		}
	}
	return sol, nil
}

// systematic returns the per-choice value before shocks: flow reward plus
// the discounted EMAX of the successor state.
func systematic(a model.Attributes, sol *model.Solution, t, s int) []float64 {
	base := make([]float64, a.NumChoices)
	for c := range base {
		base[c] = a.Rewards[c][s]
		if t < a.NumPeriods-1 {
			base[c] += a.Discount * sol.EMAX[t+1][a.Transitions[c][s]]
		}
	}
	return base
}

// shockDraws returns a NumDraws x NumChoices matrix of scaled normal shocks.
// Draws are seeded per period so results do not depend on solve order.
func shockDraws(a model.Attributes, t int) *mat.Dense {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(a.Seed, uint64(t))}
	draws := mat.NewDense(a.NumDraws, a.NumChoices, nil)
	for i := 0; i < a.NumDraws; i++ {
		for c := 0; c < a.NumChoices; c++ {
			draws.Set(i, c, dist.Rand()*a.ShockSD[c])
		}
	}
	return draws
}

// expectedMax averages max_c(base_c + shift_c + shock_c) over the draws.
func expectedMax(draws *mat.Dense, base, shift []float64) float64 {
	n, c := draws.Dims()
	row := make([]float64, c)
	total := 0.0
	for i := 0; i < n; i++ {
		mat.Row(row, i, draws)
		floats.Add(row, base)
		if shift != nil {
			floats.Add(row, shift)
		}
		total += floats.Max(row)
	}
	return total / float64(n)
}
