package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Attribute names understood by Get and Set.
const (
	AttrIsAmbiguous    = "is_ambiguous"
	AttrBackendKind    = "backend_kind"
	AttrIsDebug        = "is_debug"
	AttrStore          = "store"
	AttrNumPeriods     = "num_periods"
	AttrIsSolved       = "is_solved"
	AttrNumStates      = "num_states"
	AttrNumChoices     = "num_choices"
	AttrRewards        = "rewards"
	AttrTransitions    = "transitions"
	AttrShockSD        = "shock_sd"
	AttrDiscount       = "discount"
	AttrAmbiguityLevel = "ambiguity_level"
	AttrNumDraws       = "num_draws"
	AttrNumAgents      = "num_agents"
	AttrSeed           = "seed"
	AttrExecutable     = "executable"
)

var (
	// ErrUnknownAttribute is returned for names the store does not hold.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrAttributeType is returned when Set receives a value of the wrong type.
	ErrAttributeType = errors.New("attribute type mismatch")
)

// StateError reports a mutation attempted while the model is locked.
type StateError struct {
	Op   string
	Attr string
}

func (e *StateError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("model is locked: %s", e.Op)
	}
	return fmt.Sprintf("model is locked: %s %s", e.Op, e.Attr)
}

// Attributes describe the configuration of a finite-horizon model.
// Rewards and Transitions are indexed [choice][state].
type Attributes struct {
	IsAmbiguous    bool        `json:"is_ambiguous" yaml:"is_ambiguous"`
	Backend        BackendKind `json:"backend_kind" yaml:"backend_kind"`
	IsDebug        bool        `json:"is_debug" yaml:"is_debug"`
	Store          bool        `json:"store" yaml:"store"`
	NumPeriods     int         `json:"num_periods" yaml:"num_periods"`
	IsSolved       bool        `json:"is_solved" yaml:"is_solved"`
	NumStates      int         `json:"num_states" yaml:"num_states"`
	NumChoices     int         `json:"num_choices" yaml:"num_choices"`
	Rewards        [][]float64 `json:"rewards" yaml:"rewards"`
	Transitions    [][]int     `json:"transitions" yaml:"transitions"`
	ShockSD        []float64   `json:"shock_sd" yaml:"shock_sd"`
	Discount       float64     `json:"discount" yaml:"discount"`
	AmbiguityLevel float64     `json:"ambiguity_level" yaml:"ambiguity_level"`
	NumDraws       int         `json:"num_draws" yaml:"num_draws"`
	NumAgents      int         `json:"num_agents" yaml:"num_agents"`
	Seed           uint64      `json:"seed" yaml:"seed"`
	Executable     string      `json:"executable,omitempty" yaml:"executable,omitempty"`
}

// Solution holds the artifacts produced by a backend.
type Solution struct {
	// EMAX is the expected value of the maximum, indexed [period][state].
	EMAX [][]float64 `json:"emax"`
	// WorstShift is the adversarial mean shift of the shocks chosen under
	// ambiguity, indexed [period][state][choice]. Nil without ambiguity.
	WorstShift [][][]float64 `json:"worst_shift,omitempty"`
}

// Model is the attribute store passed through the solve pipeline. It is
// either locked (read-only) or unlocked; every mutator checks the lock.
type Model struct {
	attrs    Attributes
	solution *Solution
	locked   bool
}

// New returns a locked model holding a copy of attrs.
func New(attrs Attributes) *Model {
	return &Model{attrs: attrs.clone(), locked: true}
}

// Lock makes the model read-only.
func (m *Model) Lock() { m.locked = true }

// Unlock permits mutation until the next Lock.
func (m *Model) Unlock() { m.locked = false }

// Locked reports whether mutation is currently rejected.
func (m *Model) Locked() bool { return m.locked }

// Status reports whether the model is ready to be solved.
func (m *Model) Status() bool { return m.Validate() == nil }

// Validate returns the first reason the model is not ready to be solved.
//
//gocyclo:ignore
func (m *Model) Validate() error {
	a := m.attrs
	if a.NumPeriods <= 0 {
		return fmt.Errorf("num_periods must be positive, got %d", a.NumPeriods)
	}
	if !a.Backend.Valid() {
		return fmt.Errorf("unknown backend kind %d", a.Backend)
	}
	if a.NumStates <= 0 || a.NumChoices <= 0 {
		return fmt.Errorf("num_states and num_choices must be positive")
	}
	if len(a.Rewards) != a.NumChoices || len(a.Transitions) != a.NumChoices || len(a.ShockSD) != a.NumChoices {
		return fmt.Errorf("rewards, transitions and shock_sd need one entry per choice")
	}
	for c := 0; c < a.NumChoices; c++ {
		if len(a.Rewards[c]) != a.NumStates || len(a.Transitions[c]) != a.NumStates {
			return fmt.Errorf("choice %d: rewards and transitions need one entry per state", c)
		}
		for s, next := range a.Transitions[c] {
			if next < 0 || next >= a.NumStates {
				return fmt.Errorf("choice %d state %d: transition to %d out of range", c, s, next)
			}
		}
		if a.ShockSD[c] < 0 {
			return fmt.Errorf("choice %d: negative shock_sd", c)
		}
	}
	if a.Discount < 0 || a.Discount >= 1 {
		return fmt.Errorf("discount must be in [0,1), got %g", a.Discount)
	}
	if a.AmbiguityLevel < 0 {
		return fmt.Errorf("ambiguity_level must not be negative")
	}
	if a.NumDraws <= 0 {
		return fmt.Errorf("num_draws must be positive")
	}
	if a.NumAgents < 0 {
		return fmt.Errorf("num_agents must not be negative")
	}
	return nil
}

// Attributes returns a copy of the model attributes.
func (m *Model) Attributes() Attributes { return m.attrs.clone() }

func (m *Model) IsAmbiguous() bool    { return m.attrs.IsAmbiguous }
func (m *Model) Backend() BackendKind { return m.attrs.Backend }
func (m *Model) IsDebug() bool        { return m.attrs.IsDebug }
func (m *Model) ShouldStore() bool    { return m.attrs.Store }
func (m *Model) NumPeriods() int      { return m.attrs.NumPeriods }
func (m *Model) IsSolved() bool       { return m.attrs.IsSolved }

// Solution returns the solution artifacts or nil before a backend ran.
func (m *Model) Solution() *Solution { return m.solution }

// SetSolution attaches backend artifacts. It fails while locked.
func (m *Model) SetSolution(sol *Solution) error {
	if m.locked {
		return &StateError{Op: "set", Attr: "solution"}
	}
	m.solution = sol
	return nil
}

// SetSolved sets is_solved. It fails while locked.
func (m *Model) SetSolved(v bool) error { return m.Set(AttrIsSolved, v) }

// Get returns the attribute stored under name.
//
//gocyclo:ignore
func (m *Model) Get(name string) (any, error) {
	a := m.attrs
	switch name {
	case AttrIsAmbiguous:
		return a.IsAmbiguous, nil
	case AttrBackendKind:
		return a.Backend, nil
	case AttrIsDebug:
		return a.IsDebug, nil
	case AttrStore:
		return a.Store, nil
	case AttrNumPeriods:
		return a.NumPeriods, nil
	case AttrIsSolved:
		return a.IsSolved, nil
	case AttrNumStates:
		return a.NumStates, nil
	case AttrNumChoices:
		return a.NumChoices, nil
	case AttrRewards:
		return cloneMatrix(a.Rewards), nil
	case AttrTransitions:
		return cloneIndex(a.Transitions), nil
	case AttrShockSD:
		return append([]float64(nil), a.ShockSD...), nil
	case AttrDiscount:
		return a.Discount, nil
	case AttrAmbiguityLevel:
		return a.AmbiguityLevel, nil
	case AttrNumDraws:
		return a.NumDraws, nil
	case AttrNumAgents:
		return a.NumAgents, nil
	case AttrSeed:
		return a.Seed, nil
	case AttrExecutable:
		return a.Executable, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
}

// Set stores value under name. It fails with *StateError while locked.
//
//gocyclo:ignore
func (m *Model) Set(name string, value any) error {
	if m.locked {
		return &StateError{Op: "set", Attr: name}
	}
	var ok bool
	a := &m.attrs
	switch name {
	case AttrIsAmbiguous:
		a.IsAmbiguous, ok = value.(bool)
	case AttrBackendKind:
		a.Backend, ok = value.(BackendKind)
	case AttrIsDebug:
		a.IsDebug, ok = value.(bool)
	case AttrStore:
		a.Store, ok = value.(bool)
	case AttrNumPeriods:
		a.NumPeriods, ok = value.(int)
	case AttrIsSolved:
		a.IsSolved, ok = value.(bool)
	case AttrNumStates:
		a.NumStates, ok = value.(int)
	case AttrNumChoices:
		a.NumChoices, ok = value.(int)
	case AttrRewards:
		var v [][]float64
		if v, ok = value.([][]float64); ok {
			a.Rewards = cloneMatrix(v)
		}
	case AttrTransitions:
		var v [][]int
		if v, ok = value.([][]int); ok {
			a.Transitions = cloneIndex(v)
		}
	case AttrShockSD:
		var v []float64
		if v, ok = value.([]float64); ok {
			a.ShockSD = append([]float64(nil), v...)
		}
	case AttrDiscount:
		a.Discount, ok = value.(float64)
	case AttrAmbiguityLevel:
		a.AmbiguityLevel, ok = value.(float64)
	case AttrNumDraws:
		a.NumDraws, ok = value.(int)
	case AttrNumAgents:
		a.NumAgents, ok = value.(int)
	case AttrSeed:
		a.Seed, ok = value.(uint64)
	case AttrExecutable:
		a.Executable, ok = value.(string)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	if !ok {
		return fmt.Errorf("%w: %s got %T", ErrAttributeType, name, value)
	}
	return nil
}

type persisted struct {
	Attributes Attributes `json:"attributes"`
	Solution   *Solution  `json:"solution,omitempty"`
}

// Store writes the model and its solution to path as JSON.
func (m *Model) Store(path string) error {
	b, err := json.MarshalIndent(persisted{Attributes: m.attrs, Solution: m.solution}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Load reads a model written by Store. The returned model is locked.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	m := New(p.Attributes)
	m.solution = p.Solution
	return m, nil
}

func (a Attributes) clone() Attributes {
	out := a
	out.Rewards = cloneMatrix(a.Rewards)
	out.Transitions = cloneIndex(a.Transitions)
	out.ShockSD = append([]float64(nil), a.ShockSD...)
	return out
}

func cloneMatrix(in [][]float64) [][]float64 {
	if in == nil {
		return nil
	}
	out := make([][]float64, len(in))
	for i, row := range in {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func cloneIndex(in [][]int) [][]int {
	if in == nil {
		return nil
	}
	out := make([][]int, len(in))
	for i, row := range in {
		out[i] = append([]int(nil), row...)
	}
	return out
}
