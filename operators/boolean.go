package operators

// Boolean operators. $not wraps its single operand in the one-element
// array form the protocol uses.

var (
	andDef = &def{wire: "$and", shape: SingleValue, params: []param{{name: "expressions"}}}
	orDef  = &def{wire: "$or", shape: SingleValue, params: []param{{name: "expressions"}}}
	notDef = &def{wire: "$not", shape: FixedArray, params: []param{{name: "expression"}}}
)

// And returns a $and expression over the given operands.
func And(expressions ...any) *Operator {
	return newOperator(andDef, map[string]any{"expressions": expressions})
}

// Or returns a $or expression over the given operands.
func Or(expressions ...any) *Operator {
	return newOperator(orDef, map[string]any{"expressions": expressions})
}

// Not returns a $not expression negating expression.
func Not(expression any) *Operator {
	return newOperator(notDef, map[string]any{"expression": expression})
}
