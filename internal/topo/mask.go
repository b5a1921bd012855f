package topo

// BoundaryMask forces fixed sets of cells to a known material value,
// independent of the optimization variable. Cells in forcedHigh always map
// to 1 (e.g. waveguide cores at the ports), cells in forcedLow always map
// to 0 (e.g. cladding strips). The two sets must be disjoint; everything
// else is a free cell copied through unchanged.
//
// Masking happens before filtering so that the forced values influence the
// smoothing of their free neighbors and the structure connects cleanly to
// the fixed ports.
type BoundaryMask struct {
	n          int
	forcedHigh []int
	forcedLow  []int
}

// NewBoundaryMask builds a mask over vectors of length n. The index sets are
// copied. Returns a ConfigurationError if the sets overlap or contain
// out-of-range indices.
func NewBoundaryMask(n int, forcedHigh, forcedLow []int) (*BoundaryMask, error) {
	if n <= 0 {
		return nil, &ConfigurationError{Field: "BoundaryMask", Reason: "vector length must be positive"}
	}

	seen := make(map[int]bool, len(forcedHigh))
	for _, i := range forcedHigh {
		if i < 0 || i >= n {
			return nil, &ConfigurationError{Field: "BoundaryMask.forcedHigh", Reason: "index out of range"}
		}
		seen[i] = true
	}
	for _, i := range forcedLow {
		if i < 0 || i >= n {
			return nil, &ConfigurationError{Field: "BoundaryMask.forcedLow", Reason: "index out of range"}
		}
		if seen[i] {
			return nil, &ConfigurationError{Field: "BoundaryMask", Reason: "forcedHigh and forcedLow overlap"}
		}
	}

	return &BoundaryMask{
		n:          n,
		forcedHigh: append([]int{}, forcedHigh...),
		forcedLow:  append([]int{}, forcedLow...),
	}, nil
}

// Len returns the design vector length the mask operates on.
func (m *BoundaryMask) Len() int {
	return m.n
}

// Apply returns a copy of x with forcedHigh cells set to 1 and forcedLow
// cells set to 0. The input is not modified.
func (m *BoundaryMask) Apply(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	for _, i := range m.forcedHigh {
		y[i] = 1
	}
	for _, i := range m.forcedLow {
		y[i] = 0
	}
	return y
}

// ApplyGradientTranspose zeroes the gradient components at forced cells,
// since those outputs do not depend on the corresponding inputs, and passes
// the rest through unchanged.
func (m *BoundaryMask) ApplyGradientTranspose(g []float64) []float64 {
	gp := make([]float64, len(g))
	copy(gp, g)
	for _, i := range m.forcedHigh {
		gp[i] = 0
	}
	for _, i := range m.forcedLow {
		gp[i] = 0
	}
	return gp
}
