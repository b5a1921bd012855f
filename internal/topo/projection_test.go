package topo

import (
	"math"
	"testing"
)

func TestProjectIdentityAtZeroBeta(t *testing.T) {
	x := []float64{0, 0.1, 0.25, 0.5, 0.9, 1}
	y := Project(x, 0.5, 0)
	for i := range x {
		if y[i] != x[i] {
			t.Errorf("beta=0 must be exact identity: got %g for %g", y[i], x[i])
		}
	}
}

func TestProjectIdentityLimit(t *testing.T) {
	x := []float64{0.05, 0.3, 0.5, 0.77, 0.95}
	y := Project(x, 0.4, 1e-3)
	for i := range x {
		if math.Abs(y[i]-x[i]) > 1e-3 {
			t.Errorf("small beta should approach identity: got %g for %g", y[i], x[i])
		}
	}
}

func TestProjectThresholdFixedPoint(t *testing.T) {
	// At eta=0.5 the threshold maps to 0.5 exactly for every beta.
	for _, beta := range []float64{0.1, 1, 10, 1e3, 1e4} {
		y := Project([]float64{0.5}, 0.5, beta)
		if math.Abs(y[0]-0.5) > 1e-12 {
			t.Errorf("project(0.5, 0.5, beta=%g) = %g, want 0.5", beta, y[0])
		}
	}
	// Off-center thresholds reach the fixed point in the sharp limit.
	for _, eta := range []float64{0.3, 0.7} {
		y := Project([]float64{eta}, eta, 1e3)
		if math.Abs(y[0]-0.5) > 1e-9 {
			t.Errorf("project(eta=%g, eta, 1e3) = %g, want 0.5", eta, y[0])
		}
	}
}

func TestProjectMonotonic(t *testing.T) {
	const n = 101
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i) / (n - 1)
	}
	for _, beta := range []float64{0, 1, 50, 1e3} {
		y := Project(x, 0.5, beta)
		for i := 1; i < n; i++ {
			if y[i] < y[i-1] {
				t.Fatalf("projection not monotone at beta=%g: y[%d]=%g < y[%d]=%g",
					beta, i, y[i], i-1, y[i-1])
			}
		}
	}
}

func TestProjectHardStepLimit(t *testing.T) {
	y := Project([]float64{0.1, 0.45, 0.55, 0.9}, 0.5, 1e4)
	if y[0] > 1e-6 || y[1] > 1e-6 {
		t.Errorf("values below eta should saturate to 0, got %v", y)
	}
	if y[2] < 1-1e-6 || y[3] < 1-1e-6 {
		t.Errorf("values above eta should saturate to 1, got %v", y)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("large beta produced non-finite value at %d: %v", i, v)
		}
	}
}

func TestProjectSlopeFiniteDifference(t *testing.T) {
	const eps = 1e-6
	for _, beta := range []float64{0.5, 4, 60} {
		for _, x := range []float64{0.2, 0.45, 0.5, 0.8} {
			want := (projectValue(x+eps, 0.5, beta) - projectValue(x-eps, 0.5, beta)) / (2 * eps)
			got := projectSlope(x, 0.5, beta)
			if math.Abs(got-want) > 1e-4*math.Max(1, math.Abs(want)) {
				t.Errorf("slope mismatch at x=%g beta=%g: got %g, want %g", x, beta, got, want)
			}
		}
	}
}

func TestProjectGradientTranspose(t *testing.T) {
	x := []float64{0.3, 0.5, 0.8}
	g := []float64{2, -1, 0.5}
	gp := ProjectGradientTranspose(g, x, 0.5, 10)
	for i := range x {
		want := g[i] * projectSlope(x[i], 0.5, 10)
		if math.Abs(gp[i]-want) > 1e-14 {
			t.Errorf("gradient transpose mismatch at %d: got %g, want %g", i, gp[i], want)
		}
	}
}

func TestValidateProjection(t *testing.T) {
	if err := ValidateProjection(0.5, 8); err != nil {
		t.Errorf("valid parameters rejected: %v", err)
	}
	if err := ValidateProjection(0, 8); err == nil {
		t.Error("eta=0 should be rejected")
	}
	if err := ValidateProjection(1, 8); err == nil {
		t.Error("eta=1 should be rejected")
	}
	if err := ValidateProjection(0.5, -1); err == nil {
		t.Error("negative beta should be rejected")
	}
	if err := ValidateProjection(0.5, math.Inf(1)); err == nil {
		t.Error("infinite beta should be rejected")
	}
}
