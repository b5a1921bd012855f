package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// Mayfly adapts the external mayfly population optimizer as a
// derivative-free fallback backend. Useful for warming up a design before
// handing it to the gradient-based solver; gradients requested by Eval are
// simply not computed. The library takes scalar bounds, which fits here
// because every design variable shares the same [0,1] box.
type Mayfly struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly adapter. popSize should be at least 20 for
// mayfly v0.1.0.
func NewMayfly(maxIters, popSize int, seed int64) *Mayfly {
	return &Mayfly{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Minimize implements Optimizer. x0 is unused: the library generates its own
// population and the budget bounds the iteration count instead.
func (m *Mayfly) Minimize(p Problem, x0 []float64) (*Result, error) {
	if len(p.Lower) != p.Dim || len(p.Upper) != p.Dim {
		return nil, fmt.Errorf("bounds length does not match dimension %d", p.Dim)
	}

	// The library has no early-exit hook, so the objective itself stops
	// calling Eval once the budget is spent or an evaluation has failed;
	// the remaining population updates see +Inf and cost nothing.
	var evalErr error
	numEval := 0
	objective := func(x []float64) float64 {
		if evalErr != nil {
			return math.Inf(1)
		}
		if p.MaxEvaluations > 0 && numEval >= p.MaxEvaluations {
			return math.Inf(1)
		}
		numEval++
		f, err := p.Eval(x, nil)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		return f
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = objective
	config.ProblemSize = p.Dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// External library uses scalar bounds shared by all dimensions.
	config.LowerBound = p.Lower[0]
	config.UpperBound = p.Upper[0]

	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return &Result{
		X:              result.GlobalBest.Position,
		F:              result.GlobalBest.Cost,
		NumEvaluations: numEval,
	}, nil
}
