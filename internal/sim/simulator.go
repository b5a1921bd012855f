// Package sim defines the collaborator contract with the physical simulator
// and a deterministic mock used by tests and the CLI demo mode.
package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Simulator is the opaque forward/adjoint oracle. Evaluate returns the
// objective value (to be maximized) for the given physical material field
// and the raw sensitivity ∂f/∂ρ with respect to that field, not the raw
// design vector. freqs is the set of frequency samples the objective is
// evaluated over; how they are handled (or parallelized) is internal to the
// simulator.
type Simulator interface {
	Evaluate(field []float64, freqs []float64) (objective float64, sensitivity []float64, err error)
}

// QuadraticMock is a deterministic simulator with a known optimum: the
// objective is −‖ρ−target‖² (maximal, zero, at ρ = target) and the
// sensitivity is −2(ρ−target). It ignores the frequency set.
type QuadraticMock struct {
	Target []float64
}

// NewQuadraticMock returns a mock simulator pulling the field toward target.
func NewQuadraticMock(target []float64) *QuadraticMock {
	return &QuadraticMock{Target: append([]float64{}, target...)}
}

// Evaluate implements Simulator.
func (m *QuadraticMock) Evaluate(field []float64, freqs []float64) (float64, []float64, error) {
	if len(field) != len(m.Target) {
		return 0, nil, fmt.Errorf("field length %d does not match target length %d", len(field), len(m.Target))
	}
	diff := make([]float64, len(field))
	floats.SubTo(diff, field, m.Target)
	objective := -floats.Dot(diff, diff)
	floats.Scale(-2, diff)
	return objective, diff, nil
}
