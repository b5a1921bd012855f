package topo

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func testMapping(t *testing.T, grid Grid, radius float64, forcedHigh, forcedLow []int) *Mapping {
	t.Helper()
	mask, err := NewBoundaryMask(grid.NumCells(), forcedHigh, forcedLow)
	if err != nil {
		t.Fatalf("NewBoundaryMask failed: %v", err)
	}
	filter, err := NewDensityFilter(grid, radius)
	if err != nil {
		t.Fatalf("NewDensityFilter failed: %v", err)
	}
	mapping, err := NewMapping(mask, filter)
	if err != nil {
		t.Fatalf("NewMapping failed: %v", err)
	}
	return mapping
}

func TestMapConstantHalfIsFixedPoint(t *testing.T) {
	grid := testGrid(t, 10, 10, 10)
	mapping := testMapping(t, grid, 0.25, nil, nil)

	x := make([]float64, 100)
	for i := range x {
		x[i] = 0.5
	}

	// Constant 0.5 filters to itself and sits on the projection threshold,
	// so the mapped field stays 0.5 across the whole beta range.
	for _, beta := range []float64{10, 1e4} {
		rho := mapping.Map(x, 0.5, beta)
		for i, v := range rho {
			if math.Abs(v-0.5) > 1e-9 {
				t.Fatalf("beta=%g: rho[%d]=%g, want 0.5", beta, i, v)
			}
		}
	}
}

func TestMapForcedCellsExact(t *testing.T) {
	grid := testGrid(t, 10, 10, 10)
	high := []int{grid.Index(0, 4), grid.Index(0, 5)}
	low := []int{grid.Index(9, 4), grid.Index(9, 5)}
	mapping := testMapping(t, grid, 0.15, high, low)

	x := make([]float64, grid.NumCells())
	for i := range x {
		x[i] = 0.5
	}

	// With a sharp projection the masked cells, whose filtered values are
	// pulled across the threshold by their forced neighborhoods, come out
	// near their forced material.
	rho := mapping.Map(x, 0.5, 1e3)
	for _, i := range high {
		if rho[i] < 0.99 {
			t.Errorf("forced-high cell %d mapped to %g", i, rho[i])
		}
	}
	for _, i := range low {
		if rho[i] > 0.01 {
			t.Errorf("forced-low cell %d mapped to %g", i, rho[i])
		}
	}
}

func TestMapGradientFiniteDifference(t *testing.T) {
	grid := testGrid(t, 6, 5, 10)
	mapping := testMapping(t, grid, 0.25, []int{0}, []int{29})

	rng := rand.New(rand.NewSource(11))
	n := grid.NumCells()
	x := make([]float64, n)
	d := make([]float64, n)
	seed := make([]float64, n)
	for i := range x {
		x[i] = 0.2 + 0.6*rng.Float64()
		d[i] = rng.NormFloat64()
		seed[i] = rng.NormFloat64()
	}

	const (
		eta  = 0.45
		beta = 4.0
		eps  = 1e-6
	)

	xp := make([]float64, n)
	xm := make([]float64, n)
	floats.AddScaledTo(xp, x, eps, d)
	floats.AddScaledTo(xm, x, -eps, d)

	// Directional derivative of seed·map(x) along d, by central difference.
	fd := (floats.Dot(seed, mapping.Map(xp, eta, beta)) -
		floats.Dot(seed, mapping.Map(xm, eta, beta))) / (2 * eps)

	g := mapping.MapGradientTranspose(seed, x, eta, beta)
	ad := floats.Dot(g, d)

	if math.Abs(fd-ad) > 1e-5*math.Max(1, math.Abs(fd)) {
		t.Errorf("VJP disagrees with finite differences: fd=%g, adjoint=%g", fd, ad)
	}
}

func TestMapNearBinaryIdempotence(t *testing.T) {
	grid := testGrid(t, 20, 20, 10)
	mapping := testMapping(t, grid, 0.2, nil, nil)

	// Left half void, right half material.
	x := make([]float64, grid.NumCells())
	for iy := 0; iy < grid.Ny; iy++ {
		for ix := 10; ix < grid.Nx; ix++ {
			x[grid.Index(ix, iy)] = 1
		}
	}

	rho := mapping.Map(x, 0.5, 1e3)
	for iy := 0; iy < grid.Ny; iy++ {
		for ix := 0; ix < grid.Nx; ix++ {
			// Cells more than a filter radius from the material boundary
			// must keep their binary value.
			if ix >= 7 && ix <= 12 {
				continue
			}
			i := grid.Index(ix, iy)
			if math.Abs(rho[i]-x[i]) > 1e-3 {
				t.Fatalf("binary value not preserved at (%d,%d): got %g, want %g", ix, iy, rho[i], x[i])
			}
		}
	}
}

func TestMapErodedDilatedOrdering(t *testing.T) {
	grid := testGrid(t, 8, 8, 10)
	mapping := testMapping(t, grid, 0.2, nil, nil)

	rng := rand.New(rand.NewSource(3))
	x := make([]float64, grid.NumCells())
	for i := range x {
		x[i] = rng.Float64()
	}

	const (
		etaE = 0.6
		beta = 50.0
	)
	eroded := mapping.MapEroded(x, etaE, beta)
	nominal := mapping.Map(x, 0.5, beta)
	dilated := mapping.MapDilated(x, etaE, beta)

	for i := range x {
		if eroded[i] > nominal[i]+1e-12 {
			t.Fatalf("eroded exceeds nominal at %d: %g > %g", i, eroded[i], nominal[i])
		}
		if nominal[i] > dilated[i]+1e-12 {
			t.Fatalf("nominal exceeds dilated at %d: %g > %g", i, nominal[i], dilated[i])
		}
	}
}

func TestNewMappingSizeMismatch(t *testing.T) {
	grid := testGrid(t, 4, 4, 10)
	mask, err := NewBoundaryMask(7, nil, nil)
	if err != nil {
		t.Fatalf("NewBoundaryMask failed: %v", err)
	}
	filter, err := NewDensityFilter(grid, 0.2)
	if err != nil {
		t.Fatalf("NewDensityFilter failed: %v", err)
	}
	if _, err := NewMapping(mask, filter); err == nil {
		t.Error("expected error for mask/filter size mismatch")
	}
}
