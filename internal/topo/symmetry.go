package topo

// Instance is one placement of the shared design vector onto the physical
// grid: perm[i] gives the physical cell index that design cell i lands on,
// or -1 if this instance does not cover that cell. Rotations and mirrors
// are bijective; partial placements leave gaps that other instances must
// cover.
type Instance struct {
	perm []int
}

// IdentityInstance places each design cell on itself.
func IdentityInstance(grid Grid) Instance {
	perm := make([]int, grid.NumCells())
	for i := range perm {
		perm[i] = i
	}
	return Instance{perm: perm}
}

// RotatedInstance places the design rotated by quarterTurns*90° counter-
// clockwise. Quarter turns other than 0 and 2 require a square grid.
func RotatedInstance(grid Grid, quarterTurns int) (Instance, error) {
	q := ((quarterTurns % 4) + 4) % 4
	if q%2 == 1 && grid.Nx != grid.Ny {
		return Instance{}, &ConfigurationError{Field: "Instance", Reason: "90° rotation requires a square grid"}
	}
	perm := make([]int, grid.NumCells())
	for iy := 0; iy < grid.Ny; iy++ {
		for ix := 0; ix < grid.Nx; ix++ {
			var px, py int
			switch q {
			case 0:
				px, py = ix, iy
			case 1: // (x, y) -> (y, n-1-x), one CCW quarter turn
				px, py = iy, grid.Nx-1-ix
			case 2:
				px, py = grid.Nx-1-ix, grid.Ny-1-iy
			case 3:
				px, py = grid.Ny-1-iy, ix
			}
			perm[grid.Index(ix, iy)] = grid.Index(px, py)
		}
	}
	return Instance{perm: perm}, nil
}

// MirroredInstance places the design mirrored across the vertical axis
// (flipX true) and/or the horizontal axis (flipY true).
func MirroredInstance(grid Grid, flipX, flipY bool) Instance {
	perm := make([]int, grid.NumCells())
	for iy := 0; iy < grid.Ny; iy++ {
		for ix := 0; ix < grid.Nx; ix++ {
			px, py := ix, iy
			if flipX {
				px = grid.Nx - 1 - ix
			}
			if flipY {
				py = grid.Ny - 1 - iy
			}
			perm[grid.Index(ix, iy)] = grid.Index(px, py)
		}
	}
	return Instance{perm: perm}
}

// SymmetryAggregator averages K geometrically transformed instances of the
// same design into one effective material field, and splits gradients back
// across instances. The optimizer controls a single set of variables while
// the physical result is symmetric.
type SymmetryAggregator struct {
	instances []Instance
	count     []int // covering instances per physical cell
	n         int
}

// NewSymmetryAggregator builds an aggregator over vectors of length n.
// Every physical cell must be covered by at least one instance.
func NewSymmetryAggregator(n int, instances ...Instance) (*SymmetryAggregator, error) {
	if len(instances) == 0 {
		return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "at least one instance is required"}
	}
	count := make([]int, n)
	for _, inst := range instances {
		if len(inst.perm) != n {
			return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "instance size does not match grid"}
		}
		for _, p := range inst.perm {
			if p >= n {
				return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "instance index out of range"}
			}
			if p >= 0 {
				count[p]++
			}
		}
	}
	for _, c := range count {
		if c == 0 {
			return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "some cells are covered by no instance"}
		}
	}
	return &SymmetryAggregator{
		instances: instances,
		count:     count,
		n:         n,
	}, nil
}

// NumInstances returns K.
func (a *SymmetryAggregator) NumInstances() int {
	return len(a.instances)
}

// Aggregate combines one field per instance into the physical field:
// combined[p] is the mean of the contributing instances' values at p,
// taken over exactly the instances that cover p.
func (a *SymmetryAggregator) Aggregate(fields [][]float64) ([]float64, error) {
	if len(fields) != len(a.instances) {
		return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "field count does not match instance count"}
	}
	combined := make([]float64, a.n)
	for k, inst := range a.instances {
		if len(fields[k]) != a.n {
			return nil, &ConfigurationError{Field: "SymmetryAggregator", Reason: "field size does not match grid"}
		}
		for i, p := range inst.perm {
			if p >= 0 {
				combined[p] += fields[k][i]
			}
		}
	}
	for p := range combined {
		combined[p] /= float64(a.count[p])
	}
	return combined, nil
}

// Scatter distributes a gradient on the combined field back to each
// instance, scaled by 1/K(p) per cell: the exact adjoint of the mean.
func (a *SymmetryAggregator) Scatter(g []float64) [][]float64 {
	out := make([][]float64, len(a.instances))
	for k, inst := range a.instances {
		gk := make([]float64, a.n)
		for i, p := range inst.perm {
			if p >= 0 {
				gk[i] = g[p] / float64(a.count[p])
			}
		}
		out[k] = gk
	}
	return out
}
