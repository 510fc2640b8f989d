// Package aggerr defines the error taxonomy shared by the builder packages.
// The root mongopipe package re-exports these types so callers never import
// this package directly.
package aggerr

import "fmt"

// ValidationError reports a malformed node rejected at construction time.
// Param names the offending parameter when known.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Param == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Param, e.Reason)
}

// Invalid returns a ValidationError for the named parameter.
func Invalid(param, format string, args ...any) error {
	return &ValidationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports a pipeline invoked in a mode it was not
// configured for, e.g. run mode without an executor.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// TypeError reports a structural mutation attempted on an operator kind
// that does not support it. Operator is the wire name of the operator the
// call was made against.
type TypeError struct {
	Method   string
	Operator string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot call %s on %q operator", e.Method, e.Operator)
}
