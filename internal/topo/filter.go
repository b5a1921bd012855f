package topo

import (
	"math"
)

// stencilTap is one neighbor offset of the conic kernel with its raw
// (unnormalized) weight.
type stencilTap struct {
	dx, dy int
	w      float64
}

// DensityFilter is a linear local-averaging operator with a conic (linear
// hat) kernel: w(d) = 1 - d/R for d < R, zero outside. The kernel is
// strictly decreasing in distance and continuous at the support edge.
// Weights are renormalized per output cell over the in-bounds part of the
// neighborhood, so a uniform input maps to itself everywhere, including at
// domain edges.
type DensityFilter struct {
	grid    Grid
	radius  float64
	stencil []stencilTap
	norm    []float64 // per-cell sum of in-bounds raw weights
}

// NewDensityFilter builds the filter stencil and per-cell normalization for
// the given grid and radius (in length units).
func NewDensityFilter(grid Grid, radius float64) (*DensityFilter, error) {
	if radius <= 0 {
		return nil, &ConfigurationError{Field: "DensityFilter.radius", Reason: "must be positive"}
	}

	h := grid.Spacing()
	reach := int(math.Ceil(radius / h))

	var stencil []stencilTap
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d := h * math.Hypot(float64(dx), float64(dy))
			if d < radius {
				stencil = append(stencil, stencilTap{dx: dx, dy: dy, w: 1 - d/radius})
			}
		}
	}

	f := &DensityFilter{
		grid:    grid,
		radius:  radius,
		stencil: stencil,
		norm:    make([]float64, grid.NumCells()),
	}

	for iy := 0; iy < grid.Ny; iy++ {
		for ix := 0; ix < grid.Nx; ix++ {
			var sum float64
			for _, t := range stencil {
				jx, jy := ix+t.dx, iy+t.dy
				if jx >= 0 && jx < grid.Nx && jy >= 0 && jy < grid.Ny {
					sum += t.w
				}
			}
			f.norm[grid.Index(ix, iy)] = sum
		}
	}

	return f, nil
}

// Radius returns the filter radius in length units.
func (f *DensityFilter) Radius() float64 {
	return f.radius
}

// Apply computes y[i] = sum_j w(i,j)*x[j] over all j within the radius of i,
// with weights normalized so each output cell's weights sum to one.
func (f *DensityFilter) Apply(x []float64) []float64 {
	g := f.grid
	y := make([]float64, len(x))
	for iy := 0; iy < g.Ny; iy++ {
		for ix := 0; ix < g.Nx; ix++ {
			i := g.Index(ix, iy)
			var acc float64
			for _, t := range f.stencil {
				jx, jy := ix+t.dx, iy+t.dy
				if jx >= 0 && jx < g.Nx && jy >= 0 && jy < g.Ny {
					acc += t.w * x[g.Index(jx, jy)]
				}
			}
			y[i] = acc / f.norm[i]
		}
	}
	return y
}

// ApplyGradientTranspose applies the transposed weight matrix:
// gp[j] = sum_i w(i,j)*g[i]/norm[i]. The raw kernel is symmetric in
// distance, but the per-cell normalization makes the full operator
// non-symmetric near edges, so the scatter divides by the destination
// row's normalizer.
func (f *DensityFilter) ApplyGradientTranspose(g []float64) []float64 {
	gr := f.grid
	gp := make([]float64, len(g))
	for iy := 0; iy < gr.Ny; iy++ {
		for ix := 0; ix < gr.Nx; ix++ {
			i := gr.Index(ix, iy)
			gi := g[i] / f.norm[i]
			for _, t := range f.stencil {
				jx, jy := ix+t.dx, iy+t.dy
				if jx >= 0 && jx < gr.Nx && jy >= 0 && jy < gr.Ny {
					gp[gr.Index(jx, jy)] += t.w * gi
				}
			}
		}
	}
	return gp
}

// ConicRadiusFromEtaE derives the conic filter radius that enforces a
// minimum feature length under erosion at threshold etaE. Closed form for
// the conic kernel; etaE must lie in [0.5, 1].
func ConicRadiusFromEtaE(minLength, etaE float64) (float64, error) {
	if minLength <= 0 {
		return 0, &ConfigurationError{Field: "minLength", Reason: "must be positive"}
	}
	switch {
	case etaE >= 0.5 && etaE < 0.75:
		return minLength / (2 * math.Sqrt(etaE-0.5)), nil
	case etaE >= 0.75 && etaE <= 1:
		return minLength / (2 - 2*math.Sqrt(1-etaE)), nil
	default:
		return 0, &ConfigurationError{Field: "etaE", Reason: "must be in [0.5, 1]"}
	}
}
