package topo

// ConfigurationError reports an invalid setup parameter (bad masks, η outside
// (0,1), non-positive radius, negative β). It is raised at construction time,
// never during optimization.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Field + " " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}
