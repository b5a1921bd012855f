package store

import (
	"fmt"
	"time"
)

// RunConfig holds the static configuration a continuation run was started
// with. Saved alongside the run state so a resume can verify compatibility.
type RunConfig struct {
	Nx         int     `json:"nx"`
	Ny         int     `json:"ny"`
	Resolution float64 `json:"resolution"`
	Eta        float64 `json:"eta"`        // intermediate threshold η_i
	EtaErosion float64 `json:"etaErosion"` // erosion threshold η_e
	MinLength  float64 `json:"minLength"`  // minimum feature length
	Beta0      float64 `json:"beta0"`
	Growth     float64 `json:"growth"`
	Stages     int     `json:"stages"`
	Budget     int     `json:"budget"`
	Symmetry   string  `json:"symmetry,omitempty"` // none, rot2, rot4, mirror
	Optimizer  string  `json:"optimizer"`          // lbfgsb, mayfly
}

// RunState is a saved continuation run that can be resumed later.
//
// Only the design vector and schedule position are saved, never the local
// optimizer's internal state. Each stage constructs a fresh optimizer
// anyway (stale curvature history must not cross a β change), so resuming
// from a stage boundary is an exact continuation, not an approximation.
type RunState struct {
	// RunID uniquely identifies this run.
	RunID string `json:"runId"`

	// Design is the current design vector, values in [0,1].
	Design []float64 `json:"design"`

	// NextStage is the index of the first stage that has not completed.
	NextStage int `json:"nextStage"`

	// Beta is the sharpness the last completed stage ran under.
	Beta float64 `json:"beta"`

	// BestObjective is the highest simulator objective seen so far.
	BestObjective float64 `json:"bestObjective"`

	// Evaluations is the total simulator evaluation count so far.
	Evaluations int `json:"evaluations"`

	// Timestamp records when this state was saved.
	Timestamp time.Time `json:"timestamp"`

	// Config is the run configuration, checked on resume.
	Config RunConfig `json:"config"`
}

// RunInfo is run metadata without the design vector, for cheap listings.
type RunInfo struct {
	RunID         string    `json:"runId"`
	NextStage     int       `json:"nextStage"`
	Stages        int       `json:"stages"`
	Beta          float64   `json:"beta"`
	BestObjective float64   `json:"bestObjective"`
	Evaluations   int       `json:"evaluations"`
	Timestamp     time.Time `json:"timestamp"`
	Cells         int       `json:"cells"`
}

// ToInfo strips the design vector off a RunState.
func (s *RunState) ToInfo() RunInfo {
	return RunInfo{
		RunID:         s.RunID,
		NextStage:     s.NextStage,
		Stages:        s.Config.Stages,
		Beta:          s.Beta,
		BestObjective: s.BestObjective,
		Evaluations:   s.Evaluations,
		Timestamp:     s.Timestamp,
		Cells:         len(s.Design),
	}
}

// Validate checks that the state is internally consistent.
func (s *RunState) Validate() error {
	if s.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(s.Design) == 0 {
		return &ValidationError{Field: "Design", Reason: "cannot be empty"}
	}
	if s.Config.Nx <= 0 || s.Config.Ny <= 0 {
		return &ValidationError{Field: "Config", Reason: "grid dimensions must be positive"}
	}
	if len(s.Design) != s.Config.Nx*s.Config.Ny {
		return &ValidationError{
			Field:  "Design",
			Reason: fmt.Sprintf("length %d does not match %dx%d grid", len(s.Design), s.Config.Nx, s.Config.Ny),
		}
	}
	if s.NextStage < 0 || s.NextStage > s.Config.Stages {
		return &ValidationError{Field: "NextStage", Reason: "outside the schedule"}
	}
	if s.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if s.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// IsCompatible checks whether this state can be resumed under the given
// configuration. The mapping-defining parameters must match exactly; the
// per-stage budget and optimizer backend may differ between sessions.
func (s *RunState) IsCompatible(config RunConfig) error {
	if s.Config.Nx != config.Nx || s.Config.Ny != config.Ny {
		return &CompatibilityError{
			Field:    "grid",
			Expected: fmt.Sprintf("%dx%d", s.Config.Nx, s.Config.Ny),
			Actual:   fmt.Sprintf("%dx%d", config.Nx, config.Ny),
		}
	}
	if s.Config.Resolution != config.Resolution {
		return &CompatibilityError{
			Field:    "Resolution",
			Expected: fmt.Sprintf("%g", s.Config.Resolution),
			Actual:   fmt.Sprintf("%g", config.Resolution),
		}
	}
	if s.Config.Eta != config.Eta || s.Config.EtaErosion != config.EtaErosion {
		return &CompatibilityError{
			Field:    "thresholds",
			Expected: fmt.Sprintf("eta=%g etaE=%g", s.Config.Eta, s.Config.EtaErosion),
			Actual:   fmt.Sprintf("eta=%g etaE=%g", config.Eta, config.EtaErosion),
		}
	}
	if s.Config.MinLength != config.MinLength {
		return &CompatibilityError{
			Field:    "MinLength",
			Expected: fmt.Sprintf("%g", s.Config.MinLength),
			Actual:   fmt.Sprintf("%g", config.MinLength),
		}
	}
	if s.Config.Beta0 != config.Beta0 || s.Config.Growth != config.Growth || s.Config.Stages != config.Stages {
		return &CompatibilityError{
			Field:    "schedule",
			Expected: fmt.Sprintf("beta0=%g growth=%g stages=%d", s.Config.Beta0, s.Config.Growth, s.Config.Stages),
			Actual:   fmt.Sprintf("beta0=%g growth=%g stages=%d", config.Beta0, config.Growth, config.Stages),
		}
	}
	if s.Config.Symmetry != config.Symmetry {
		return &CompatibilityError{Field: "Symmetry", Expected: s.Config.Symmetry, Actual: config.Symmetry}
	}
	return nil
}

// ValidationError reports an inconsistent run state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CompatibilityError reports a resume attempt under a different configuration.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
