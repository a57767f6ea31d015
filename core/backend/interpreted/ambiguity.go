package interpreted

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

type worstCaseResult struct {
	shift   []float64
	value   float64
	success bool
	message string
}

// worstCase minimises the expected maximum over mean shifts bounded by
// level in every coordinate. The bound is enforced by a tanh transform.
func worstCase(draws *mat.Dense, base []float64, level float64) worstCaseResult {
	bounded := func(x []float64) []float64 {
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = level * math.Tanh(v)
		}
		return out
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return expectedMax(draws, base, bounded(x)) },
	}
	settings := &optimize.Settings{
		FuncEvaluations: 1000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 25},
	}
	x0 := make([]float64, len(base))
	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})

	out := worstCaseResult{shift: bounded(x0)}
	switch {
	case res == nil:
		out.message = err.Error()
	case err != nil:
		out.message = err.Error()
		out.shift = bounded(res.X)
	default:
		out.shift = bounded(res.X)
		out.success = converged(res.Status)
		out.message = res.Status.String()
	}
	out.value = expectedMax(draws, base, out.shift)
	return out
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// log writes the diagnostic block for one optimisation.
func (r worstCaseResult) log(w io.Writer, t, s int) error {
	ok := "False"
	if r.success {
		ok = "True"
	}
	_, err := fmt.Fprintf(w, "PERIOD %d STATE %d\n    Success %s Message %s Value %s\n\n",
		t, s, ok, quote(r.message), strconv.FormatFloat(r.value, 'f', 6, 64))
	return err
}

// quote renders s as a single shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
