package operators

// Accumulator operators. Used inside group, bucket and set-window stages;
// $first, $last, $max, $min and $sum double as plain expression operators.

var (
	avgDef   = &def{wire: "$avg", shape: SingleValue, params: []param{{name: "expression"}}}
	countDef = &def{wire: "$count", shape: Document}
	firstDef = &def{wire: "$first", shape: SingleValue, params: []param{{name: "expression"}}}
	lastDef  = &def{wire: "$last", shape: SingleValue, params: []param{{name: "expression"}}}
	maxDef   = &def{wire: "$max", shape: SingleValue, params: []param{{name: "expression"}}}
	minDef   = &def{wire: "$min", shape: SingleValue, params: []param{{name: "expression"}}}
	pushDef  = &def{wire: "$push", shape: SingleValue, params: []param{{name: "expression"}}}
	sumDef   = &def{wire: "$sum", shape: SingleValue, params: []param{{name: "expression"}}}
)

// Avg returns a $avg accumulator over expression.
func Avg(expression any) *Operator {
	return newOperator(avgDef, map[string]any{"expression": expression})
}

// Count returns a $count accumulator. The operator takes no parameters;
// its payload is the empty document the protocol requires.
func Count() *Operator {
	return newOperator(countDef, nil)
}

// First returns a $first accumulator over expression.
func First(expression any) *Operator {
	return newOperator(firstDef, map[string]any{"expression": expression})
}

// Last returns a $last accumulator over expression.
func Last(expression any) *Operator {
	return newOperator(lastDef, map[string]any{"expression": expression})
}

// Max returns a $max accumulator over expression.
func Max(expression any) *Operator {
	return newOperator(maxDef, map[string]any{"expression": expression})
}

// Min returns a $min accumulator over expression.
func Min(expression any) *Operator {
	return newOperator(minDef, map[string]any{"expression": expression})
}

// Push returns a $push accumulator over expression.
func Push(expression any) *Operator {
	return newOperator(pushDef, map[string]any{"expression": expression})
}

// Sum returns a $sum accumulator over expression.
func Sum(expression any) *Operator {
	return newOperator(sumDef, map[string]any{"expression": expression})
}
