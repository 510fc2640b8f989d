package mongopipe

import "github.com/qbloq/mongopipe/internal/aggerr"

// The builder's error taxonomy. Construction-time failures are
// ValidationErrors carrying the offending parameter name; invoking a
// pipeline in run mode without an executor is a ConfigurationError;
// structural mutations on an incompatible operator kind are TypeErrors.
// Executor failures pass through unwrapped.
type (
	ValidationError    = aggerr.ValidationError
	ConfigurationError = aggerr.ConfigurationError
	TypeError          = aggerr.TypeError
)
