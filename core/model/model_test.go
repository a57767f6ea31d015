package model

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttrs() Attributes {
	return Attributes{
		Backend:     BackendInterpreted,
		NumPeriods:  3,
		NumStates:   2,
		NumChoices:  2,
		Rewards:     [][]float64{{1, 2}, {0.5, 0.5}},
		Transitions: [][]int{{1, 1}, {0, 0}},
		ShockSD:     []float64{1, 0.5},
		Discount:    0.9,
		NumDraws:    10,
	}
}

func TestModel_NewIsLocked(t *testing.T) {
	m := New(validAttrs())
	assert.True(t, m.Locked())
	assert.True(t, m.Status())
}

func TestModel_SetWhileLocked(t *testing.T) {
	m := New(validAttrs())
	err := m.Set(AttrIsSolved, true)
	var se *StateError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, AttrIsSolved, se.Attr)
	assert.False(t, m.IsSolved())

	err = m.SetSolution(&Solution{})
	require.True(t, errors.As(err, &se))
	assert.Nil(t, m.Solution())
}

func TestModel_SetWhileUnlocked(t *testing.T) {
	m := New(validAttrs())
	m.Unlock()
	require.NoError(t, m.SetSolved(true))
	require.NoError(t, m.Set(AttrNumPeriods, 5))
	m.Lock()
	assert.True(t, m.IsSolved())
	assert.Equal(t, 5, m.NumPeriods())

	v, err := m.Get(AttrNumPeriods)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestModel_SetErrors(t *testing.T) {
	m := New(validAttrs())
	m.Unlock()
	assert.ErrorIs(t, m.Set("nope", 1), ErrUnknownAttribute)
	assert.ErrorIs(t, m.Set(AttrNumPeriods, "3"), ErrAttributeType)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestModel_AttributesAreCopies(t *testing.T) {
	m := New(validAttrs())
	a := m.Attributes()
	a.Rewards[0][0] = 99
	v, err := m.Get(AttrRewards)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.([][]float64)[0][0])
}

func TestModel_Status(t *testing.T) {
	cases := map[string]func(*Attributes){
		"zero periods":    func(a *Attributes) { a.NumPeriods = 0 },
		"bad backend":     func(a *Attributes) { a.Backend = BackendKind(7) },
		"short rewards":   func(a *Attributes) { a.Rewards = a.Rewards[:1] },
		"bad transition":  func(a *Attributes) { a.Transitions[0][1] = 4 },
		"discount of one": func(a *Attributes) { a.Discount = 1 },
		"negative level":  func(a *Attributes) { a.AmbiguityLevel = -1 },
		"no draws":        func(a *Attributes) { a.NumDraws = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAttrs()
			mutate(&a)
			m := New(a)
			assert.False(t, m.Status())
			assert.Error(t, m.Validate())
		})
	}
}

func TestModel_StoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.json")
	m := New(validAttrs())
	m.Unlock()
	require.NoError(t, m.SetSolution(&Solution{EMAX: [][]float64{{1, 2}, {3, 4}, {5, 6}}}))
	require.NoError(t, m.SetSolved(true))
	m.Lock()
	require.NoError(t, m.Store(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, got.Locked())
	assert.True(t, got.IsSolved())
	assert.Equal(t, BackendInterpreted, got.Backend())
	assert.Equal(t, m.Solution().EMAX, got.Solution().EMAX)
}

func TestParseBackendKind(t *testing.T) {
	k, err := ParseBackendKind("compiled")
	require.NoError(t, err)
	assert.Equal(t, BackendCompiled, k)
	_, err = ParseBackendKind("fortran")
	assert.Error(t, err)
}

func TestDecodeSpec(t *testing.T) {
	src := `
is_ambiguous: true
backend_kind: COMPILED
is_debug: true
num_periods: 4
num_states: 1
num_choices: 1
rewards: [[1.5]]
transitions: [[0]]
shock_sd: [0.2]
ambiguity_level: 0.1
is_solved: true
`
	m, err := DecodeSpec(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, m.Locked())
	assert.True(t, m.IsAmbiguous())
	assert.Equal(t, BackendCompiled, m.Backend())
	assert.False(t, m.IsSolved())
	assert.Equal(t, 0.95, m.Attributes().Discount)
	assert.True(t, m.Status())

	_, err = DecodeSpec(strings.NewReader("num_period: 3\n"))
	assert.Error(t, err)
}
