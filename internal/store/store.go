package store

// Store defines the interface for run-state persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return a NotFoundError if the run doesn't exist (Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically saves the state for the given run, overwriting any
	// previous state. Implementations should write via temp file + rename so
	// a crash never leaves a corrupt state file.
	SaveRun(runID string, state *RunState) error

	// LoadRun retrieves the state for the given run.
	// Returns a NotFoundError if no state exists for this runID.
	LoadRun(runID string) (*RunState, error)

	// ListRuns returns metadata for all saved runs.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run's state and objective trace.
	// Returns a NotFoundError if no state exists for this runID.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
