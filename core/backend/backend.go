package backend

import (
	"context"
	"fmt"

	"github.com/kilianp07/robsolve/core/model"
)

// Solver performs backward induction on a ready model.
type Solver interface {
	Solve(ctx context.Context, m *model.Model) (*model.Model, error)
}

// Error is a fault raised by a backend while solving.
type Error struct {
	Backend model.BackendKind
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Attach unlocks m, stores sol and locks m again.
func Attach(m *model.Model, sol *model.Solution) error {
	m.Unlock()
	defer m.Lock()
	return m.SetSolution(sol)
}
