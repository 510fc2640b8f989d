package operators

import "github.com/qbloq/mongopipe/internal/aggerr"

// Array operators.

var (
	arrayToObjectDef = &def{wire: "$arrayToObject", shape: SingleValue, params: []param{{name: "expression"}}}
	inDef            = &def{wire: "$in", shape: FixedArray, params: []param{{name: "expression"}, {name: "array"}}}
	sizeDef          = &def{wire: "$size", shape: SingleValue, params: []param{{name: "expression"}}}
	filterDef        = &def{
		wire:  "$filter",
		shape: Document,
		params: []param{
			{name: "array", wire: "input"},
			{name: "query", wire: "cond"},
			{name: "name", wire: "as"},
			{name: "limit"},
		},
	}
	maxNDef = &def{
		wire:   "$maxN",
		shape:  Document,
		params: []param{{name: "array", wire: "input"}, {name: "limit", wire: "n"}},
	}
	minNDef = &def{
		wire:   "$minN",
		shape:  Document,
		params: []param{{name: "array", wire: "input"}, {name: "limit", wire: "n"}},
	}
)

// ArrayToObject returns a $arrayToObject expression over an array of
// key/value pairs.
func ArrayToObject(expression any) *Operator {
	return newOperator(arrayToObjectDef, map[string]any{"expression": expression})
}

// In returns a $in expression checking whether expression is an element
// of array. The compiled array is always [expression, array] in that
// order.
func In(expression, array any) *Operator {
	return newOperator(inDef, map[string]any{"expression": expression, "array": array})
}

// Size returns a $size expression over an array.
func Size(expression any) *Operator {
	return newOperator(sizeDef, map[string]any{"expression": expression})
}

// Filter returns a $filter expression selecting the elements of array for
// which query evaluates to true. name is the binding the query refers to
// the current element by; when empty the engine default ("this") is used
// and the key is omitted.
func Filter(array any, name string, query any) *Operator {
	vals := map[string]any{"array": array, "query": query}
	if name != "" {
		vals["name"] = name
	}
	return newOperator(filterDef, vals)
}

// MaxN returns a $maxN expression selecting the limit highest elements
// of array. limit defaults to 1 when omitted; the protocol requires the
// n key even for the default, so it is always emitted.
func MaxN(array any, limit ...int) (*Operator, error) {
	return selectN(maxNDef, array, limit)
}

// MinN returns a $minN expression selecting the limit lowest elements of
// array. See MaxN for the n key contract.
func MinN(array any, limit ...int) (*Operator, error) {
	return selectN(minNDef, array, limit)
}

func selectN(d *def, array any, limit []int) (*Operator, error) {
	n := 1
	if len(limit) > 0 {
		n = limit[0]
	}
	if n < 1 {
		return nil, aggerr.Invalid("limit", "must be a positive integer, got %d", n)
	}
	return newOperator(d, map[string]any{"array": array, "limit": n}), nil
}
