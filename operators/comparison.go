package operators

// Comparison operators. All compile to a positional [left, right] array;
// left always precedes right regardless of how the caller obtained the
// values.

var (
	cmpDef = &def{wire: "$cmp", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	eqDef  = &def{wire: "$eq", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	gtDef  = &def{wire: "$gt", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	gteDef = &def{wire: "$gte", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	ltDef  = &def{wire: "$lt", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	lteDef = &def{wire: "$lte", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
	neDef  = &def{wire: "$ne", shape: FixedArray, params: []param{{name: "left"}, {name: "right"}}}
)

func comparison(d *def, left, right any) *Operator {
	return newOperator(d, map[string]any{"left": left, "right": right})
}

// Cmp returns a $cmp expression comparing left to right.
func Cmp(left, right any) *Operator { return comparison(cmpDef, left, right) }

// Eq returns a $eq expression.
func Eq(left, right any) *Operator { return comparison(eqDef, left, right) }

// Gt returns a $gt expression.
func Gt(left, right any) *Operator { return comparison(gtDef, left, right) }

// Gte returns a $gte expression.
func Gte(left, right any) *Operator { return comparison(gteDef, left, right) }

// Lt returns a $lt expression.
func Lt(left, right any) *Operator { return comparison(ltDef, left, right) }

// Lte returns a $lte expression.
func Lte(left, right any) *Operator { return comparison(lteDef, left, right) }

// Ne returns a $ne expression.
func Ne(left, right any) *Operator { return comparison(neDef, left, right) }
