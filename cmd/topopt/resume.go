package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hammy4815/topopt/internal/store"
)

var (
	resumeDataDir   string
	resumeBudget    int
	resumeOptimizer string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [run-id]",
	Short: "Resume a saved continuation run",
	Long: `Loads a saved run state and executes its remaining continuation stages,
starting from the stage after the last completed one. The per-stage budget
and optimizer backend may be changed between sessions; everything defining
the mapping and schedule must match the saved run.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for run state storage")
	resumeCmd.Flags().IntVar(&resumeBudget, "budget", 0, "Override the per-stage evaluation budget (0 = keep saved)")
	resumeCmd.Flags().StringVar(&resumeOptimizer, "optimizer", "", "Override the optimizer backend (empty = keep saved)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	state, err := st.LoadRun(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("run %s has invalid state: %w", runID, err)
	}

	if state.NextStage >= state.Config.Stages {
		fmt.Printf("Run %s already completed all %d stages.\n", runID, state.Config.Stages)
		return nil
	}

	cfg := state.Config
	if resumeBudget > 0 {
		cfg.Budget = resumeBudget
	}
	if resumeOptimizer != "" {
		cfg.Optimizer = resumeOptimizer
	}
	if err := state.IsCompatible(cfg); err != nil {
		return fmt.Errorf("run %s cannot resume under this configuration: %w", runID, err)
	}

	driver, err := buildDriver(cfg, state.Design, state.NextStage)
	if err != nil {
		return fmt.Errorf("failed to rebuild continuation pipeline: %w", err)
	}

	slog.Info("Resuming continuation run",
		"run_id", runID,
		"next_stage", state.NextStage,
		"stages", cfg.Stages,
		"optimizer", cfg.Optimizer,
	)

	dataDir = resumeDataDir // persistRun writes through the shared store dir
	runErr := driver.Run()

	if err := persistRun(runID, cfg, driver, state.Evaluations); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("resumed run %s aborted: %w", runID, runErr)
	}

	best, _ := driver.History().Best()
	fmt.Printf("Run %s resumed and finished: %d new evaluations, best objective %.6g\n",
		runID, driver.History().Len(), best.Objective)
	return nil
}
