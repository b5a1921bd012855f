package cont

import "fmt"

// EvaluationError reports a broken simulator response: a non-finite
// objective or sensitivity, or a sensitivity whose shape does not match the
// material field. The stage aborts; the driver's last accepted design vector
// is left intact.
type EvaluationError struct {
	Stage  int
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error in stage %d: %s", e.Stage, e.Reason)
}

func (e *EvaluationError) Is(target error) bool {
	_, ok := target.(*EvaluationError)
	return ok
}

// OptimizationError reports a failure of the external local optimizer: it
// raised its own error or returned a point violating the box bounds. Earlier
// stages' results remain valid.
type OptimizationError struct {
	Stage  int
	Reason string
	Err    error
}

func (e *OptimizationError) Error() string {
	msg := fmt.Sprintf("optimization error in stage %d: %s", e.Stage, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OptimizationError) Unwrap() error {
	return e.Err
}

func (e *OptimizationError) Is(target error) bool {
	_, ok := target.(*OptimizationError)
	return ok
}
