package topo

// Mapping composes mask → filter → projection into one forward transform and
// one reverse-mode gradient transform. The order is fixed: masking before
// filtering lets forced boundary values influence the smoothing of their
// free neighbors.
//
// The reverse transform recomputes the forward intermediates from the given
// x, η, β rather than caching them, so a Mapping is stateless and the
// gradient is always consistent with the arguments it receives.
type Mapping struct {
	mask   *BoundaryMask
	filter *DensityFilter
}

// NewMapping composes a mask and a filter over the same design vector.
func NewMapping(mask *BoundaryMask, filter *DensityFilter) (*Mapping, error) {
	if mask == nil || filter == nil {
		return nil, &ConfigurationError{Field: "Mapping", Reason: "mask and filter are required"}
	}
	if mask.Len() != filter.grid.NumCells() {
		return nil, &ConfigurationError{Field: "Mapping", Reason: "mask and filter grid sizes differ"}
	}
	return &Mapping{mask: mask, filter: filter}, nil
}

// Len returns the design vector length the mapping operates on.
func (m *Mapping) Len() int {
	return m.mask.Len()
}

// Map computes ρ = project(filter(mask(x)), η, β).
func (m *Mapping) Map(x []float64, eta, beta float64) []float64 {
	return Project(m.filter.Apply(m.mask.Apply(x)), eta, beta)
}

// MapGradientTranspose pushes a sensitivity on ρ backward through the
// composition, applying the component adjoints in reverse order. The
// projection's input (the filtered field) is recomputed from x so the
// derivative is evaluated at the values the matching forward pass saw.
func (m *Mapping) MapGradientTranspose(g, x []float64, eta, beta float64) []float64 {
	filtered := m.filter.Apply(m.mask.Apply(x))
	gp := ProjectGradientTranspose(g, filtered, eta, beta)
	gf := m.filter.ApplyGradientTranspose(gp)
	return m.mask.ApplyGradientTranspose(gf)
}

// MapEroded evaluates the same filtered field at the erosion threshold η_e.
// Used for manufacturability checks against worst-case under-etch.
func (m *Mapping) MapEroded(x []float64, etaE, beta float64) []float64 {
	return m.Map(x, etaE, beta)
}

// MapDilated evaluates the same filtered field at the dilation threshold
// 1−η_e, the worst-case over-etch counterpart.
func (m *Mapping) MapDilated(x []float64, etaE, beta float64) []float64 {
	return m.Map(x, 1-etaE, beta)
}
