// Package operators implements the aggregation operator catalogue. Each
// operator kind is declared once as a catalogue entry carrying its wire
// name, arity shape and ordered parameter list; a single generic compile
// routine assembles every operator from that metadata.
//
// Operators are immutable value objects: constructors validate, Statement
// compiles, nothing mutates.
package operators

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
)

// Shape describes how an operator's compiled parameters are assembled
// into its payload.
type Shape int

const (
	// SingleValue: the sole parameter's compiled value is the payload.
	SingleValue Shape = iota
	// FixedArray: an ordered array of the compiled parameter values, in
	// declared order. Protocol operators are positional; this order is a
	// correctness contract.
	FixedArray
	// Document: a mapping from wire key to compiled value. Unset optional
	// parameters are omitted.
	Document
)

// param declares one operator parameter: its builder-facing name and the
// wire key it serializes under for Document-shaped operators.
type param struct {
	name string
	wire string
}

func (p param) wireKey() string {
	if p.wire != "" {
		return p.wire
	}
	return p.name
}

// def is the catalogue entry for one operator kind.
type def struct {
	wire   string
	shape  Shape
	params []param
}

// Operator is an operator expression: a catalogue entry applied to
// resolved parameter values.
type Operator struct {
	def  *def
	vals map[string]any
}

func newOperator(d *def, vals map[string]any) *Operator {
	return &Operator{def: d, vals: vals}
}

// Name returns the operator's wire name, e.g. "$sum".
func (o *Operator) Name() string { return o.def.wire }

// Statement compiles the operator into its single-key wire document. It
// is pure: parameters are resolved recursively and assembled per the
// declared arity shape, never mutating the operator.
func (o *Operator) Statement() any {
	var payload any
	switch o.def.shape {
	case SingleValue:
		payload = expr.Resolve(o.vals[o.def.params[0].name])
	case FixedArray:
		arr := make(bson.A, 0, len(o.def.params))
		for _, p := range o.def.params {
			arr = append(arr, expr.Resolve(o.vals[p.name]))
		}
		payload = arr
	case Document:
		doc := make(bson.D, 0, len(o.def.params))
		for _, p := range o.def.params {
			v, ok := o.vals[p.name]
			if !ok {
				continue
			}
			doc = append(doc, bson.E{Key: p.wireKey(), Value: expr.Resolve(v)})
		}
		payload = doc
	}
	return bson.D{{Key: o.def.wire, Value: payload}}
}
