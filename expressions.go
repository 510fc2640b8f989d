package mongopipe

import "github.com/qbloq/mongopipe/expr"

// Re-exports of the expression node model so most callers only import
// this package; see the expr package for the full documentation.
type (
	Expression = expr.Expression
	FieldPath  = expr.FieldPath
	Variable   = expr.Variable
)

// Field builds a "$"-prefixed field path reference.
func Field(path string) (FieldPath, error) { return expr.Field(path) }

// Var builds a "$$"-prefixed variable reference.
func Var(name string) (Variable, error) { return expr.Var(name) }

// Resolve recursively substitutes builder nodes with their compiled
// statements.
func Resolve(v any) any { return expr.Resolve(v) }
