package topo

import "math"

// Project applies the smooth threshold
//
//	y = (tanh(β·η) + tanh(β·(x−η))) / (tanh(β·η) + tanh(β·(1−η)))
//
// elementwise. It is monotonically increasing in x, degenerates to the
// identity as β→0, and approaches a hard step at x=η as β→∞ (with x=η itself
// pinned to 0.5 in that limit). math.Tanh saturates for large arguments, so
// β up to ~1e4 is safe without explicit clamping. β=0 is handled as an exact
// identity since the closed form is 0/0 there.
func Project(x []float64, eta, beta float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = projectValue(v, eta, beta)
	}
	return y
}

// ProjectGradientTranspose multiplies g elementwise by dy/dx evaluated at
// the same x, η, β used in the matching forward call:
//
//	dy/dx = β·(1−tanh(β·(x−η))²) / (tanh(β·η) + tanh(β·(1−η)))
func ProjectGradientTranspose(g, x []float64, eta, beta float64) []float64 {
	gp := make([]float64, len(g))
	for i, v := range x {
		gp[i] = g[i] * projectSlope(v, eta, beta)
	}
	return gp
}

func projectValue(x, eta, beta float64) float64 {
	if beta == 0 {
		return x
	}
	denom := math.Tanh(beta*eta) + math.Tanh(beta*(1-eta))
	return (math.Tanh(beta*eta) + math.Tanh(beta*(x-eta))) / denom
}

func projectSlope(x, eta, beta float64) float64 {
	if beta == 0 {
		return 1
	}
	t := math.Tanh(beta * (x - eta))
	denom := math.Tanh(beta*eta) + math.Tanh(beta*(1-eta))
	return beta * (1 - t*t) / denom
}

// ValidateProjection checks the projection parameters at setup time.
func ValidateProjection(eta, beta float64) error {
	if eta <= 0 || eta >= 1 {
		return &ConfigurationError{Field: "eta", Reason: "must be in (0, 1)"}
	}
	if beta < 0 {
		return &ConfigurationError{Field: "beta", Reason: "must be non-negative"}
	}
	if math.IsNaN(eta) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return &ConfigurationError{Field: "projection", Reason: "parameters must be finite"}
	}
	return nil
}
