package cont

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hammy4815/topopt/internal/opt"
	"github.com/hammy4815/topopt/internal/sim"
	"github.com/hammy4815/topopt/internal/topo"
)

// boundTol is the slack allowed when checking the optimizer's returned point
// against the [0,1] box.
const boundTol = 1e-9

// DriverConfig wires the continuation driver to its collaborators.
type DriverConfig struct {
	Mapping    *topo.Mapping
	Aggregator *topo.SymmetryAggregator // optional symmetry enforcement
	Simulator  sim.Simulator
	Optimizer  opt.Optimizer
	Schedule   Schedule
	Eta        float64 // intermediate projection threshold
	Freqs      []float64
	Initial    []float64 // starting design vector, values in [0,1]
	StartStage int       // first stage to run, normally 0 (used by resume)
}

// Driver runs the continuation schedule: a sequence of bounded local
// optimizations with increasing projection sharpness, each seeded by the
// previous stage's solution. Single-threaded and synchronous; the design
// vector is replaced only at stage boundaries.
type Driver struct {
	cfg     DriverConfig
	design  []float64
	stage   int
	history EvaluationHistory
}

// NewDriver validates the configuration and returns a driver positioned at
// the configured start stage.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if cfg.Mapping == nil {
		return nil, &topo.ConfigurationError{Field: "Driver.Mapping", Reason: "is required"}
	}
	if cfg.Simulator == nil {
		return nil, &topo.ConfigurationError{Field: "Driver.Simulator", Reason: "is required"}
	}
	if cfg.Optimizer == nil {
		return nil, &topo.ConfigurationError{Field: "Driver.Optimizer", Reason: "is required"}
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := topo.ValidateProjection(cfg.Eta, cfg.Schedule[0].Beta); err != nil {
		return nil, err
	}
	if len(cfg.Initial) != cfg.Mapping.Len() {
		return nil, &topo.ConfigurationError{Field: "Driver.Initial", Reason: "length does not match mapping"}
	}
	for _, v := range cfg.Initial {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, &topo.ConfigurationError{Field: "Driver.Initial", Reason: "values must lie in [0, 1]"}
		}
	}
	if cfg.StartStage < 0 || cfg.StartStage >= len(cfg.Schedule) {
		return nil, &topo.ConfigurationError{Field: "Driver.StartStage", Reason: "outside the schedule"}
	}

	return &Driver{
		cfg:    cfg,
		design: append([]float64{}, cfg.Initial...),
		stage:  cfg.StartStage,
	}, nil
}

// Run executes the remaining stages in order. On error the driver keeps the
// last accepted design vector, so the caller can inspect or resume it.
func (d *Driver) Run() error {
	for d.stage < len(d.cfg.Schedule) {
		st := d.cfg.Schedule[d.stage]
		if err := d.runStage(d.stage, st); err != nil {
			return err
		}
		d.stage++
	}
	return nil
}

// runStage drives one bounded local optimization at a fixed β. The optimizer
// is given a fresh problem; the driver's design vector is only replaced once
// the stage finishes cleanly.
func (d *Driver) runStage(idx int, st Stage) error {
	slog.Info("Starting continuation stage",
		"stage", idx,
		"beta", st.Beta,
		"budget", st.Budget,
	)

	n := len(d.design)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range upper {
		upper[i] = 1
	}

	eval := func(x, grad []float64) (float64, error) {
		rho, err := d.physicalField(x, st.Beta)
		if err != nil {
			return 0, err
		}

		f, dfdrho, err := d.cfg.Simulator.Evaluate(rho, d.cfg.Freqs)
		if err != nil {
			return 0, &EvaluationError{Stage: idx, Reason: err.Error()}
		}
		if len(dfdrho) != len(rho) {
			return 0, &EvaluationError{Stage: idx, Reason: "sensitivity shape does not match material field"}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &EvaluationError{Stage: idx, Reason: "simulator returned non-finite objective"}
		}
		for _, s := range dfdrho {
			if math.IsNaN(s) || math.IsInf(s, 0) {
				return 0, &EvaluationError{Stage: idx, Reason: "simulator returned non-finite sensitivity"}
			}
		}

		if grad != nil {
			gx := d.designGradient(dfdrho, x, st.Beta)
			// Simulator objectives are maximized; the solver minimizes.
			for i := range grad {
				grad[i] = -gx[i]
			}
		}

		d.history.append(idx, st.Beta, f)
		return -f, nil
	}

	res, err := d.cfg.Optimizer.Minimize(opt.Problem{
		Dim:            n,
		Lower:          lower,
		Upper:          upper,
		MaxEvaluations: st.Budget,
		Eval:           eval,
	}, d.design)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return err
		}
		return &OptimizationError{Stage: idx, Reason: "local optimizer failed", Err: err}
	}

	for i, v := range res.X {
		if v < lower[i]-boundTol || v > upper[i]+boundTol {
			return &OptimizationError{Stage: idx, Reason: "optimizer returned a point outside the box bounds"}
		}
	}

	// Accept the stage result as the next stage's starting point.
	copy(d.design, res.X)
	clampUnit(d.design)

	slog.Info("Continuation stage complete",
		"stage", idx,
		"beta", st.Beta,
		"objective", -res.F,
		"evaluations", res.NumEvaluations,
		"converged", res.Converged,
	)
	return nil
}

// physicalField maps a candidate design vector to the physical material
// field for the given β, averaging symmetry instances when configured.
func (d *Driver) physicalField(x []float64, beta float64) ([]float64, error) {
	field := d.cfg.Mapping.Map(x, d.cfg.Eta, beta)
	if d.cfg.Aggregator == nil {
		return field, nil
	}
	fields := make([][]float64, d.cfg.Aggregator.NumInstances())
	for k := range fields {
		fields[k] = field
	}
	return d.cfg.Aggregator.Aggregate(fields)
}

// designGradient pushes the raw sensitivity backward: through the symmetry
// aggregator's adjoint first when configured, then through the mapping's
// reverse transform. Instances share one design vector, so their adjoint
// contributions sum before the single mapping VJP.
func (d *Driver) designGradient(dfdrho, x []float64, beta float64) []float64 {
	g := dfdrho
	if d.cfg.Aggregator != nil {
		parts := d.cfg.Aggregator.Scatter(dfdrho)
		sum := make([]float64, len(x))
		for _, p := range parts {
			floats.Add(sum, p)
		}
		g = sum
	}
	return d.cfg.Mapping.MapGradientTranspose(g, x, d.cfg.Eta, beta)
}

// Design returns a copy of the current design vector.
func (d *Driver) Design() []float64 {
	return append([]float64{}, d.design...)
}

// StageIndex returns the index of the next stage to run.
func (d *Driver) StageIndex() int {
	return d.stage
}

// History returns the evaluation history accumulated so far.
func (d *Driver) History() *EvaluationHistory {
	return &d.history
}

// clampUnit snaps round-off noise from the optimizer back into [0,1].
func clampUnit(x []float64) {
	for i, v := range x {
		x[i] = math.Max(0, math.Min(1, v))
	}
}
