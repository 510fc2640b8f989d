package stages

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

// LookupOpts carries the parameters of a $lookup stage. Each join
// parameter has two spellings, the builder name and the wire name; both
// resolve to the same value and setting both to different values is a
// construction error.
type LookupOpts struct {
	// Right is the foreign collection to join. From is its wire-name
	// alias.
	Right string
	From  string

	// LeftOn is the field of the current collection to join on.
	// LocalField is its wire-name alias.
	LeftOn     string
	LocalField string

	// RightOn is the field of the foreign collection to join on.
	// ForeignField is its wire-name alias.
	RightOn      string
	ForeignField string

	// Name is the output array field added to each document. As is its
	// wire-name alias.
	Name string
	As   string

	// Let binds variables usable as "$$name" inside Pipeline.
	Let map[string]any

	// Pipeline is a compiled sub-pipeline to run on the foreign
	// collection. It must not contain a $out or $merge stage.
	Pipeline []bson.D
}

// forbiddenSubStages are the terminal stage kinds a lookup sub-pipeline
// may not contain, at any nesting depth.
var forbiddenSubStages = map[string]bool{
	"$out":   true,
	"$merge": true,
}

// Lookup performs a left outer join against another collection of the
// same database, with optional let-bindings and a correlated or
// uncorrelated sub-pipeline.
type Lookup struct {
	right    string
	leftOn   string
	rightOn  string
	name     string
	let      map[string]any
	pipeline []bson.D
}

// NewLookup builds a $lookup stage. The four join parameters are
// required, under either spelling. A sub-pipeline is validated
// structurally: no $out or $merge stage anywhere in it, and every
// "$$variable" it references must be declared in Let or be an engine
// system variable.
func NewLookup(opts LookupOpts) (*Lookup, error) {
	right, err := pickAlias("right", opts.Right, "from", opts.From)
	if err != nil {
		return nil, err
	}
	leftOn, err := pickAlias("left_on", opts.LeftOn, "localField", opts.LocalField)
	if err != nil {
		return nil, err
	}
	rightOn, err := pickAlias("right_on", opts.RightOn, "foreignField", opts.ForeignField)
	if err != nil {
		return nil, err
	}
	name, err := pickAlias("name", opts.Name, "as", opts.As)
	if err != nil {
		return nil, err
	}

	for _, stage := range opts.Pipeline {
		if kind := findForbidden(stage); kind != "" {
			return nil, aggerr.Invalid("pipeline", "%s stage is not allowed inside a lookup sub-pipeline", kind)
		}
	}
	if err := checkBindings(opts.Pipeline, opts.Let); err != nil {
		return nil, err
	}

	return &Lookup{
		right:    right,
		leftOn:   leftOn,
		rightOn:  rightOn,
		name:     name,
		let:      opts.Let,
		pipeline: opts.Pipeline,
	}, nil
}

// pickAlias resolves a parameter given under either its builder name or
// its wire name to a single stored value.
func pickAlias(name, v, alias, aliased string) (string, error) {
	switch {
	case v != "" && aliased != "" && v != aliased:
		return "", aggerr.Invalid(name, "conflicting values given under aliases %q and %q", name, alias)
	case v != "":
		return v, nil
	case aliased != "":
		return aliased, nil
	default:
		return "", aggerr.Invalid(name, "required parameter is missing")
	}
}

// findForbidden scans a compiled stage document recursively for a
// forbidden stage key, covering nested lookup sub-pipelines.
func findForbidden(v any) string {
	switch t := v.(type) {
	case bson.D:
		for _, e := range t {
			if forbiddenSubStages[e.Key] {
				return e.Key
			}
			if kind := findForbidden(e.Value); kind != "" {
				return kind
			}
		}
	case bson.A:
		for _, el := range t {
			if kind := findForbidden(el); kind != "" {
				return kind
			}
		}
	case []bson.D:
		for _, el := range t {
			if kind := findForbidden(el); kind != "" {
				return kind
			}
		}
	case []any:
		for _, el := range t {
			if kind := findForbidden(el); kind != "" {
				return kind
			}
		}
	}
	return ""
}

// checkBindings verifies every "$$variable" referenced in the
// sub-pipeline resolves to a let-binding or a system variable.
func checkBindings(pipeline []bson.D, let map[string]any) error {
	for _, stage := range pipeline {
		if err := checkBindingsValue(stage, let); err != nil {
			return err
		}
	}
	return nil
}

func checkBindingsValue(v any, let map[string]any) error {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, "$$") {
			return nil
		}
		name := strings.SplitN(strings.TrimPrefix(t, "$$"), ".", 2)[0]
		if _, ok := let[name]; ok {
			return nil
		}
		if expr.Variable("$$" + name).IsSystem() {
			return nil
		}
		return aggerr.Invalid("pipeline", "variable %q is not declared in let", name)
	case bson.D:
		for _, e := range t {
			if err := checkBindingsValue(e.Value, let); err != nil {
				return err
			}
		}
	case bson.M:
		for _, val := range t {
			if err := checkBindingsValue(val, let); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, val := range t {
			if err := checkBindingsValue(val, let); err != nil {
				return err
			}
		}
	case bson.A:
		for _, el := range t {
			if err := checkBindingsValue(el, let); err != nil {
				return err
			}
		}
	case []any:
		for _, el := range t {
			if err := checkBindingsValue(el, let); err != nil {
				return err
			}
		}
	case []bson.D:
		for _, el := range t {
			if err := checkBindingsValue(el, let); err != nil {
				return err
			}
		}
	}
	return nil
}

// Compile emits the single-condition form when no let-bindings or
// sub-pipeline are present, and the full subquery form otherwise.
func (s *Lookup) Compile() (bson.D, error) {
	body := bson.D{}
	add := func(name string, v any) error {
		key, err := wireKey("$lookup", name)
		if err != nil {
			return err
		}
		body = append(body, bson.E{Key: key, Value: v})
		return nil
	}
	if err := add("right", s.right); err != nil {
		return nil, err
	}
	if err := add("left_on", s.leftOn); err != nil {
		return nil, err
	}
	if err := add("right_on", s.rightOn); err != nil {
		return nil, err
	}
	if err := add("name", s.name); err != nil {
		return nil, err
	}
	if s.let != nil {
		if err := add("let", resolveMap(s.let)); err != nil {
			return nil, err
		}
	}
	if s.pipeline != nil {
		if err := add("pipeline", s.pipeline); err != nil {
			return nil, err
		}
	}
	return bson.D{{Key: "$lookup", Value: body}}, nil
}
