package opt

import (
	"errors"
	"math"
	"testing"
)

func TestMayflyOnSphere(t *testing.T) {
	p := boxProblem(3, -10, 10, 0)
	optimizer := NewMayfly(100, 20, 42) // maxIters, popSize, seed

	res, err := optimizer.Minimize(p, nil)
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	if len(res.X) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(res.X))
	}

	// Should converge close to zero
	if res.F > 0.1 {
		t.Errorf("expected objective near 0, got %g", res.F)
	}
	for i, v := range res.X {
		if math.Abs(v) > 1.0 {
			t.Errorf("parameter %d = %g, expected near 0", i, v)
		}
	}
}

func TestMayflyDeterministic(t *testing.T) {
	p := boxProblem(2, -5, 5, 0)

	// Run twice with same seed (popSize must be >=20 for mayfly v0.1.0)
	res1, err := NewMayfly(50, 20, 123).Minimize(p, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	res2, err := NewMayfly(50, 20, 123).Minimize(p, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if res1.F != res2.F {
		t.Errorf("non-deterministic: f1=%g, f2=%g", res1.F, res2.F)
	}
}

func TestMayflyRespectsEvaluationBudget(t *testing.T) {
	const budget = 30
	p := boxProblem(2, -5, 5, budget)
	calls := 0
	p.Eval = func(x, g []float64) (float64, error) {
		calls++
		return sphereEval(x, g)
	}

	res, err := NewMayfly(50, 20, 7).Minimize(p, nil)
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}
	if calls > budget {
		t.Errorf("objective called %d times, budget is %d", calls, budget)
	}
	if res.NumEvaluations != calls {
		t.Errorf("reported %d evaluations, objective saw %d", res.NumEvaluations, calls)
	}
}

func TestMayflyEvalErrorAborts(t *testing.T) {
	wantErr := errors.New("simulator blew up")
	p := boxProblem(2, -5, 5, 0)
	calls := 0
	callsAfterError := 0
	p.Eval = func(x, g []float64) (float64, error) {
		calls++
		if calls > 3 {
			callsAfterError++
		}
		if calls >= 3 {
			return 0, wantErr
		}
		return sphereEval(x, g)
	}

	_, err := NewMayfly(50, 20, 99).Minimize(p, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected eval error to propagate, got %v", err)
	}
	if callsAfterError != 0 {
		t.Errorf("objective evaluated %d more times after the failure", callsAfterError)
	}
}
