package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hammy4815/topopt/internal/cont"
	"github.com/hammy4815/topopt/internal/store"
)

var (
	nx         int
	ny         int
	resolution float64
	minLength  float64
	etaErosion float64
	eta        float64
	beta0      float64
	growth     float64
	stages     int
	budget     int
	symmetry   string
	optimizer  string
	popSize    int
	seed       int64
	dataDir    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a continuation optimization",
	Long: `Runs the staged continuation optimization against the built-in demo
problem (a deterministic quadratic objective with a known optimum) and saves
the run state and objective trace for later inspection or resumption.`,
	RunE: runContinuation,
}

func init() {
	runCmd.Flags().IntVar(&nx, "nx", 40, "Design grid cells in x")
	runCmd.Flags().IntVar(&ny, "ny", 40, "Design grid cells in y")
	runCmd.Flags().Float64Var(&resolution, "res", 20, "Grid resolution (cells per length unit)")
	runCmd.Flags().Float64Var(&minLength, "min-length", 0.1, "Minimum feature length")
	runCmd.Flags().Float64Var(&etaErosion, "eta-e", 0.55, "Erosion threshold")
	runCmd.Flags().Float64Var(&eta, "eta", 0.5, "Intermediate projection threshold")
	runCmd.Flags().Float64Var(&beta0, "beta0", 8, "Initial projection sharpness")
	runCmd.Flags().Float64Var(&growth, "growth", 2, "Sharpness growth factor per stage")
	runCmd.Flags().IntVar(&stages, "stages", 6, "Number of continuation stages")
	runCmd.Flags().IntVar(&budget, "budget", 30, "Simulator evaluation budget per stage")
	runCmd.Flags().StringVar(&symmetry, "symmetry", "none", "Symmetry enforcement: none, rot2, rot4, mirror")
	runCmd.Flags().StringVar(&optimizer, "optimizer", "lbfgsb", "Local optimizer backend: lbfgsb, mayfly")
	runCmd.Flags().IntVar(&popSize, "pop", 20, "Population size (mayfly backend)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed (mayfly backend)")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run state storage")

	rootCmd.AddCommand(runCmd)
}

func runContinuation(cmd *cobra.Command, args []string) error {
	cfg := store.RunConfig{
		Nx:         nx,
		Ny:         ny,
		Resolution: resolution,
		Eta:        eta,
		EtaErosion: etaErosion,
		MinLength:  minLength,
		Beta0:      beta0,
		Growth:     growth,
		Stages:     stages,
		Budget:     budget,
		Symmetry:   symmetry,
		Optimizer:  optimizer,
	}

	// Start from a uniformly intermediate design.
	initial := make([]float64, nx*ny)
	for i := range initial {
		initial[i] = 0.5
	}

	driver, err := buildDriver(cfg, initial, 0)
	if err != nil {
		return fmt.Errorf("failed to set up continuation pipeline: %w", err)
	}

	runID := uuid.New().String()
	slog.Info("Starting continuation run",
		"run_id", runID,
		"grid", fmt.Sprintf("%dx%d", nx, ny),
		"stages", stages,
		"budget", budget,
		"optimizer", optimizer,
	)

	start := time.Now()
	runErr := driver.Run()
	elapsed := time.Since(start)

	// Persist whatever the driver reached, even on a failed stage: the last
	// accepted design vector is intact and resumable.
	if err := persistRun(runID, cfg, driver, 0); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("continuation run %s aborted: %w", runID, runErr)
	}

	best, _ := driver.History().Best()
	slog.Info("Continuation run complete",
		"run_id", runID,
		"elapsed", elapsed,
		"evaluations", driver.History().Len(),
		"best_objective", best.Objective,
	)

	fmt.Printf("Run %s finished: %d evaluations, best objective %.6g\n",
		runID, driver.History().Len(), best.Objective)
	return nil
}

// persistRun saves the driver's state and appends its history to the trace.
// baseEvals is the evaluation count carried over from earlier sessions of
// the same run.
func persistRun(runID string, cfg store.RunConfig, driver *cont.Driver, baseEvals int) error {
	st, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	history := driver.History()
	best, _ := history.Best()
	lastBeta := 0.0
	if records := history.Records(); len(records) > 0 {
		lastBeta = records[len(records)-1].Beta
	}

	state := &store.RunState{
		RunID:         runID,
		Design:        driver.Design(),
		NextStage:     driver.StageIndex(),
		Beta:          lastBeta,
		BestObjective: best.Objective,
		Evaluations:   baseEvals + history.Len(),
		Timestamp:     time.Now(),
		Config:        cfg,
	}
	if err := st.SaveRun(runID, state); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}

	tw, err := store.NewTraceWriter(dataDir, runID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer tw.Close()

	for _, r := range history.Records() {
		entry := store.TraceEntry{
			Iteration: baseEvals + r.Iteration,
			Stage:     r.Stage,
			Beta:      r.Beta,
			Objective: r.Objective,
			Timestamp: time.Now(),
		}
		if err := tw.Write(entry); err != nil {
			return fmt.Errorf("failed to write trace entry: %w", err)
		}
	}
	return tw.Flush()
}
