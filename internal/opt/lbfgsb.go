package opt

import (
	"fmt"

	"github.com/curioloop/optimizer/lbfgsb"
)

// LBFGSB adapts the curioloop L-BFGS-B solver: gradient-based minimization
// under box constraints. A fresh solver and workspace are built for every
// Minimize call, so each continuation stage starts with an empty curvature
// history.
type LBFGSB struct {
	Corrections   int     // BFGS correction pairs, default 5
	MaxIterations int     // default: the problem's evaluation budget
	ProjGradTol   float64 // projected-gradient stopping tolerance, default 1e-5
}

// NewLBFGSB returns an adapter with default solver settings.
func NewLBFGSB() *LBFGSB {
	return &LBFGSB{}
}

// Minimize implements Optimizer.
//
// The solver's Eval callback has no error channel, but its driver recovers
// panics raised inside the callback and halts. Errors from p.Eval are
// therefore recorded, thrown as a panic to unwind the solver, and returned
// once Fit comes back.
func (o *LBFGSB) Minimize(p Problem, x0 []float64) (*Result, error) {
	if len(x0) != p.Dim {
		return nil, fmt.Errorf("initial point length %d does not match dimension %d", len(x0), p.Dim)
	}
	if len(p.Lower) != p.Dim || len(p.Upper) != p.Dim {
		return nil, fmt.Errorf("bounds length does not match dimension %d", p.Dim)
	}

	corrections := o.Corrections
	if corrections <= 0 {
		corrections = 5
	}
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = p.MaxEvaluations
	}
	if maxIter <= 0 {
		maxIter = 1000
	}
	projGradTol := o.ProjGradTol
	if projGradTol <= 0 {
		projGradTol = 1e-5
	}

	bounds := make([]lbfgsb.Bound, p.Dim)
	for i := range bounds {
		bounds[i] = lbfgsb.Bound{Lower: p.Lower[i], Upper: p.Upper[i]}
	}

	var evalErr error
	eval := func(x, g []float64) float64 {
		f, err := p.Eval(x, g)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			panic(err) // recovered by the solver driver, halts the run
		}
		return f
	}

	problem := &lbfgsb.Problem{
		N:    p.Dim,
		M:    corrections,
		Eval: eval,
		Stop: lbfgsb.Termination{
			MaxIterations:     maxIter,
			MaxEvaluations:    p.MaxEvaluations,
			EpsAccuracyFactor: 1e7,
			ProjGradTolerance: projGradTol,
		},
		Bounds: bounds,
	}

	solver, err := problem.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to construct L-BFGS-B solver: %w", err)
	}

	res := solver.Fit(x0, solver.Init())
	if evalErr != nil {
		return nil, evalErr
	}

	return &Result{
		X:              res.X,
		F:              res.F,
		NumEvaluations: res.NumEval,
		Converged:      res.OK,
	}, nil
}
