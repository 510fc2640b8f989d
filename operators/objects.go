package operators

// Object operators.

var (
	mergeObjectsDef  = &def{wire: "$mergeObjects", shape: SingleValue, params: []param{{name: "expression"}}}
	objectToArrayDef = &def{wire: "$objectToArray", shape: SingleValue, params: []param{{name: "expression"}}}
)

// MergeObjects returns a $mergeObjects expression. With one operand the
// payload is that operand directly; with several it is the array form.
func MergeObjects(expressions ...any) *Operator {
	var payload any
	if len(expressions) == 1 {
		payload = expressions[0]
	} else {
		payload = expressions
	}
	return newOperator(mergeObjectsDef, map[string]any{"expression": payload})
}

// ObjectToArray returns a $objectToArray expression turning a document
// into an array of key/value pair documents.
func ObjectToArray(expression any) *Operator {
	return newOperator(objectToArrayDef, map[string]any{"expression": expression})
}
