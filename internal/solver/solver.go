// Package solver provides the fixed-step integration machinery behind the
// built-in reference model.
package solver

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether the state is free of NaN and Inf.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Dynamics is the right-hand side of an autonomous-in-form ODE system,
// x' = f(x, t).
type Dynamics interface {
	Derivative(x State, t float64) State
	Dim() int
}
