// Package expr defines the expression node model of the aggregation
// builder: field paths, variable references, literals and the recursive
// resolution that turns any mix of builder nodes and raw values into the
// nested document form the wire protocol expects.
//
// Every node is an immutable value; Statement is a pure function and may
// be called any number of times.
package expr

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// Expression is implemented by every node that can compile itself into a
// wire value. The returned value may itself contain further Expression
// nodes; Resolve flattens them.
type Expression interface {
	Statement() any
}

// FieldPath references a field of the current document. The "$" prefix is
// part of the wire value.
type FieldPath string

// Field builds a FieldPath from a dotted path, prepending the "$" marker
// when missing. An empty path is rejected.
func Field(path string) (FieldPath, error) {
	trimmed := strings.TrimPrefix(path, "$")
	if trimmed == "" {
		return "", aggerr.Invalid("path", "field path must not be empty")
	}
	return FieldPath("$" + trimmed), nil
}

func (f FieldPath) Statement() any { return string(f) }

// systemVariables are the variable names bound by the engine itself; they
// need no user declaration.
var systemVariables = map[string]bool{
	"NOW":          true,
	"CLUSTER_TIME": true,
	"ROOT":         true,
	"CURRENT":      true,
	"REMOVE":       true,
	"DESCEND":      true,
	"PRUNE":        true,
	"KEEP":         true,
	"SEARCH_META":  true,
	"USER_ROLES":   true,
}

// Variable references a binding introduced by an enclosing scope, such as
// a lookup let document. The "$$" prefix is part of the wire value.
type Variable string

// Var builds a Variable reference, prepending the "$$" marker when
// missing. An empty name is rejected.
func Var(name string) (Variable, error) {
	trimmed := strings.TrimPrefix(name, "$$")
	if trimmed == "" {
		return "", aggerr.Invalid("name", "variable name must not be empty")
	}
	return Variable("$$" + trimmed), nil
}

// Name returns the variable name without the "$$" marker.
func (v Variable) Name() string { return strings.TrimPrefix(string(v), "$$") }

// IsSystem reports whether the variable is bound by the engine itself.
func (v Variable) IsSystem() bool { return systemVariables[v.Name()] }

func (v Variable) Statement() any { return string(v) }

// Resolve recursively substitutes builder nodes with their compiled
// statements. Expressions are compiled, documents and arrays are walked,
// and everything else passes through unchanged. Raw strings are treated
// as literals even when they carry a "$" prefix; the caller decides what
// is a reference by constructing a FieldPath or Variable.
func Resolve(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Expression:
		return Resolve(t.Statement())
	case bson.D:
		out := make(bson.D, 0, len(t))
		for _, e := range t {
			out = append(out, bson.E{Key: e.Key, Value: Resolve(e.Value)})
		}
		return out
	case bson.M:
		out := make(bson.M, len(t))
		for k, val := range t {
			out[k] = Resolve(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Resolve(val)
		}
		return out
	case bson.A:
		out := make(bson.A, 0, len(t))
		for _, el := range t {
			out = append(out, Resolve(el))
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			out = append(out, Resolve(el))
		}
		return out
	default:
		return v
	}
}
