package opt

import (
	"errors"
	"math"
	"testing"
)

// sphereEval is f(x) = sum(x_i^2) with its gradient, minimum at the origin.
func sphereEval(x, g []float64) (float64, error) {
	var sum float64
	for i, v := range x {
		sum += v * v
		if g != nil {
			g[i] = 2 * v
		}
	}
	return sum, nil
}

func boxProblem(dim int, lo, hi float64, maxEval int) Problem {
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = lo
		upper[i] = hi
	}
	return Problem{
		Dim:            dim,
		Lower:          lower,
		Upper:          upper,
		MaxEvaluations: maxEval,
		Eval:           sphereEval,
	}
}

func TestLBFGSBSphere(t *testing.T) {
	p := boxProblem(3, -10, 10, 100)
	res, err := NewLBFGSB().Minimize(p, []float64{5, -7, 3})
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	if len(res.X) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(res.X))
	}
	if res.F > 1e-8 {
		t.Errorf("expected objective near 0, got %g", res.F)
	}
	for i, v := range res.X {
		if math.Abs(v) > 1e-4 {
			t.Errorf("parameter %d = %g, expected near 0", i, v)
		}
	}
	if res.NumEvaluations <= 0 {
		t.Error("expected a positive evaluation count")
	}
}

func TestLBFGSBActiveBound(t *testing.T) {
	// Unconstrained optimum of (x+2)^2 is x=-2, outside the [0,1] box;
	// the solver must stop on the lower bound.
	p := Problem{
		Dim:            1,
		Lower:          []float64{0},
		Upper:          []float64{1},
		MaxEvaluations: 50,
		Eval: func(x, g []float64) (float64, error) {
			d := x[0] + 2
			if g != nil {
				g[0] = 2 * d
			}
			return d * d, nil
		},
	}

	res, err := NewLBFGSB().Minimize(p, []float64{0.5})
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}
	if math.Abs(res.X[0]) > 1e-8 {
		t.Errorf("expected solution pinned at lower bound 0, got %g", res.X[0])
	}
}

func TestLBFGSBEvalErrorPropagates(t *testing.T) {
	wantErr := errors.New("simulator blew up")
	calls := 0
	p := boxProblem(2, -5, 5, 50)
	p.Eval = func(x, g []float64) (float64, error) {
		calls++
		if calls >= 2 {
			return 0, wantErr
		}
		return sphereEval(x, g)
	}

	_, err := NewLBFGSB().Minimize(p, []float64{3, 3})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected eval error to propagate, got %v", err)
	}
}

func TestLBFGSBDimensionMismatch(t *testing.T) {
	p := boxProblem(3, -1, 1, 10)
	if _, err := NewLBFGSB().Minimize(p, []float64{0, 0}); err == nil {
		t.Error("expected error for mismatched initial point")
	}
}
