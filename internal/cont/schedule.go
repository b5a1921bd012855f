package cont

import (
	"github.com/hammy4815/topopt/internal/topo"
)

// Stage is one continuation step: a projection sharpness and the number of
// simulator evaluations the stage's optimizer may spend.
type Stage struct {
	Beta   float64
	Budget int
}

// Schedule is the ordered sequence of stages. β must be non-decreasing:
// continuation only ever sharpens the projection.
type Schedule []Stage

// NewGeometricSchedule builds the usual β ladder: stages entries starting at
// beta0 and multiplying by growth each stage, all with the same budget.
func NewGeometricSchedule(beta0, growth float64, stages, budget int) (Schedule, error) {
	if stages <= 0 {
		return nil, &topo.ConfigurationError{Field: "Schedule", Reason: "needs at least one stage"}
	}
	if growth < 1 {
		return nil, &topo.ConfigurationError{Field: "Schedule.growth", Reason: "must be at least 1"}
	}
	s := make(Schedule, stages)
	beta := beta0
	for i := range s {
		s[i] = Stage{Beta: beta, Budget: budget}
		beta *= growth
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the schedule invariants.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return &topo.ConfigurationError{Field: "Schedule", Reason: "must not be empty"}
	}
	prev := 0.0
	for _, st := range s {
		if st.Beta < 0 {
			return &topo.ConfigurationError{Field: "Schedule", Reason: "beta must be non-negative"}
		}
		if st.Beta < prev {
			return &topo.ConfigurationError{Field: "Schedule", Reason: "beta must be non-decreasing"}
		}
		if st.Budget <= 0 {
			return &topo.ConfigurationError{Field: "Schedule", Reason: "stage budget must be positive"}
		}
		prev = st.Beta
	}
	return nil
}
