// Package opt adapts external bounded local optimizers to the interface the
// continuation driver drives. Each stage constructs a fresh solver so no
// internal state (e.g. approximate Hessian history) leaks across stages.
package opt

// Problem describes one bounded minimization.
//
// Eval computes the objective at x and, when grad is non-nil, fills grad in
// place with the gradient at x. grad may be nil for derivative-free
// backends. An error returned from Eval aborts the minimization and is
// surfaced from Minimize.
type Problem struct {
	Dim            int
	Lower, Upper   []float64
	MaxEvaluations int
	Eval           func(x []float64, grad []float64) (float64, error)
}

// Result holds the best point an optimizer found.
type Result struct {
	X              []float64
	F              float64
	NumEvaluations int
	Converged      bool // solver's own convergence test, not budget exhaustion
}

// Optimizer runs a bounded local minimization from x0.
type Optimizer interface {
	Minimize(p Problem, x0 []float64) (*Result, error)
}
