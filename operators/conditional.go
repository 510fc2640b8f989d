package operators

import "go.mongodb.org/mongo-driver/v2/bson"

// Conditional operators.

var (
	condDef = &def{
		wire:   "$cond",
		shape:  Document,
		params: []param{{name: "if"}, {name: "then"}, {name: "else"}},
	}
	ifNullDef = &def{wire: "$ifNull", shape: FixedArray, params: []param{{name: "expression"}, {name: "fallback"}}}
	switchDef = &def{wire: "$switch", shape: Document, params: []param{{name: "branches"}, {name: "default"}}}
)

// Cond returns a $cond expression evaluating to then or otherwise
// depending on condition.
func Cond(condition, then, otherwise any) *Operator {
	return newOperator(condDef, map[string]any{"if": condition, "then": then, "else": otherwise})
}

// IfNull returns a $ifNull expression evaluating to fallback when
// expression resolves to null or is missing.
func IfNull(expression, fallback any) *Operator {
	return newOperator(ifNullDef, map[string]any{"expression": expression, "fallback": fallback})
}

// Case is one branch of a Switch expression.
type Case struct {
	When any
	Then any
}

// Switch returns a $switch expression over the given cases, in order,
// with defaultValue as the fallthrough result. defaultValue may be nil,
// in which case the key is omitted and the engine errors at runtime when
// no case matches.
func Switch(cases []Case, defaultValue any) *Operator {
	branches := make(bson.A, 0, len(cases))
	for _, c := range cases {
		branches = append(branches, bson.D{
			{Key: "case", Value: c.When},
			{Key: "then", Value: c.Then},
		})
	}
	vals := map[string]any{"branches": branches}
	if defaultValue != nil {
		vals["default"] = defaultValue
	}
	return newOperator(switchDef, vals)
}
