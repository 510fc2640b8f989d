package operators

// Arithmetic operators. $add and $multiply are variadic and carry their
// operands as a single array-valued parameter; $subtract, $divide and
// $pow are positional two-element arrays.

var (
	addDef      = &def{wire: "$add", shape: SingleValue, params: []param{{name: "expressions"}}}
	multiplyDef = &def{wire: "$multiply", shape: SingleValue, params: []param{{name: "expressions"}}}
	subtractDef = &def{wire: "$subtract", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	divideDef   = &def{wire: "$divide", shape: FixedArray, params: []param{{name: "numerator"}, {name: "denominator"}}}
	powDef      = &def{wire: "$pow", shape: FixedArray, params: []param{{name: "number"}, {name: "exponent"}}}
)

// Add returns a $add expression over the given operands.
func Add(expressions ...any) *Operator {
	return newOperator(addDef, map[string]any{"expressions": expressions})
}

// Multiply returns a $multiply expression over the given operands.
func Multiply(expressions ...any) *Operator {
	return newOperator(multiplyDef, map[string]any{"expressions": expressions})
}

// Subtract returns a $subtract expression computing left - right.
func Subtract(left, right any) *Operator {
	return newOperator(subtractDef, map[string]any{"left": left, "right": right})
}

// Divide returns a $divide expression computing numerator / denominator.
func Divide(numerator, denominator any) *Operator {
	return newOperator(divideDef, map[string]any{"numerator": numerator, "denominator": denominator})
}

// Pow returns a $pow expression raising number to exponent.
func Pow(number, exponent any) *Operator {
	return newOperator(powDef, map[string]any{"number": number, "exponent": exponent})
}
