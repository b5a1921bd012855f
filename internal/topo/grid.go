package topo

// Grid describes the 2D design region. Design vectors are flat row-major
// slices of length Nx*Ny; cell (ix, iy) lives at index iy*Nx + ix.
type Grid struct {
	Nx, Ny     int
	Resolution float64 // cells per length unit
}

// NewGrid validates and returns a grid.
func NewGrid(nx, ny int, resolution float64) (Grid, error) {
	if nx <= 0 || ny <= 0 {
		return Grid{}, &ConfigurationError{Field: "Grid", Reason: "dimensions must be positive"}
	}
	if resolution <= 0 {
		return Grid{}, &ConfigurationError{Field: "Grid.Resolution", Reason: "must be positive"}
	}
	return Grid{Nx: nx, Ny: ny, Resolution: resolution}, nil
}

// NumCells returns the number of design cells.
func (g Grid) NumCells() int {
	return g.Nx * g.Ny
}

// Index returns the flat index of cell (ix, iy).
func (g Grid) Index(ix, iy int) int {
	return iy*g.Nx + ix
}

// Spacing returns the cell spacing in length units.
func (g Grid) Spacing() float64 {
	return 1 / g.Resolution
}
