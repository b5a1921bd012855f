package main

import (
	"fmt"

	"github.com/hammy4815/topopt/internal/cont"
	"github.com/hammy4815/topopt/internal/opt"
	"github.com/hammy4815/topopt/internal/sim"
	"github.com/hammy4815/topopt/internal/store"
	"github.com/hammy4815/topopt/internal/topo"
)

// buildDriver assembles the full continuation pipeline from a run
// configuration. Used by both run and resume so a resumed run is built from
// exactly the same pieces.
func buildDriver(cfg store.RunConfig, initial []float64, startStage int) (*cont.Driver, error) {
	grid, err := topo.NewGrid(cfg.Nx, cfg.Ny, cfg.Resolution)
	if err != nil {
		return nil, err
	}

	radius, err := topo.ConicRadiusFromEtaE(cfg.MinLength, cfg.EtaErosion)
	if err != nil {
		return nil, err
	}

	filter, err := topo.NewDensityFilter(grid, radius)
	if err != nil {
		return nil, err
	}

	mask, err := demoMask(grid)
	if err != nil {
		return nil, err
	}

	mapping, err := topo.NewMapping(mask, filter)
	if err != nil {
		return nil, err
	}

	aggregator, err := buildAggregator(grid, cfg.Symmetry)
	if err != nil {
		return nil, err
	}

	schedule, err := cont.NewGeometricSchedule(cfg.Beta0, cfg.Growth, cfg.Stages, cfg.Budget)
	if err != nil {
		return nil, err
	}

	optimizer, err := buildOptimizer(cfg)
	if err != nil {
		return nil, err
	}

	return cont.NewDriver(cont.DriverConfig{
		Mapping:    mapping,
		Aggregator: aggregator,
		Simulator:  sim.NewQuadraticMock(demoTarget(grid)),
		Optimizer:  optimizer,
		Schedule:   schedule,
		Eta:        cfg.Eta,
		Initial:    initial,
		StartStage: startStage,
	})
}

// buildAggregator maps the symmetry flag to instance sets.
func buildAggregator(grid topo.Grid, symmetry string) (*topo.SymmetryAggregator, error) {
	switch symmetry {
	case "", "none":
		return nil, nil
	case "rot2":
		r2, err := topo.RotatedInstance(grid, 2)
		if err != nil {
			return nil, err
		}
		return topo.NewSymmetryAggregator(grid.NumCells(), topo.IdentityInstance(grid), r2)
	case "rot4":
		instances := []topo.Instance{topo.IdentityInstance(grid)}
		for q := 1; q < 4; q++ {
			r, err := topo.RotatedInstance(grid, q)
			if err != nil {
				return nil, err
			}
			instances = append(instances, r)
		}
		return topo.NewSymmetryAggregator(grid.NumCells(), instances...)
	case "mirror":
		return topo.NewSymmetryAggregator(grid.NumCells(),
			topo.IdentityInstance(grid),
			topo.MirroredInstance(grid, false, true))
	default:
		return nil, fmt.Errorf("unknown symmetry: %s", symmetry)
	}
}

// buildOptimizer maps the optimizer flag to a backend.
func buildOptimizer(cfg store.RunConfig) (opt.Optimizer, error) {
	switch cfg.Optimizer {
	case "", "lbfgsb":
		return opt.NewLBFGSB(), nil
	case "mayfly":
		return opt.NewMayfly(cfg.Budget, popSize, seed), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", cfg.Optimizer)
	}
}

// demoMask forces the port cells on the left and right edges to material and
// the top and bottom rows to void, the geometry of the built-in demo problem.
func demoMask(grid topo.Grid) (*topo.BoundaryMask, error) {
	var forcedHigh, forcedLow []int

	// Port strips: middle third of the left and right columns.
	y0, y1 := grid.Ny/3, 2*grid.Ny/3
	for iy := y0; iy < y1; iy++ {
		forcedHigh = append(forcedHigh, grid.Index(0, iy))
		forcedHigh = append(forcedHigh, grid.Index(grid.Nx-1, iy))
	}

	// Cladding: top and bottom rows.
	for ix := 0; ix < grid.Nx; ix++ {
		forcedLow = append(forcedLow, grid.Index(ix, 0))
		forcedLow = append(forcedLow, grid.Index(ix, grid.Ny-1))
	}

	return topo.NewBoundaryMask(grid.NumCells(), forcedHigh, forcedLow)
}

// demoTarget is the mock simulator's optimum: a solid bar joining the two
// port strips, void elsewhere.
func demoTarget(grid topo.Grid) []float64 {
	target := make([]float64, grid.NumCells())
	y0, y1 := grid.Ny/3, 2*grid.Ny/3
	for iy := y0; iy < y1; iy++ {
		for ix := 0; ix < grid.Nx; ix++ {
			target[grid.Index(ix, iy)] = 1
		}
	}
	return target
}
