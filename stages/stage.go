// Package stages implements the pipeline stage model. Each stage kind is
// an immutable value type whose Compile method produces the single-key
// wire document for that stage. All structural validation happens in the
// constructors; Compile is total over values they return.
package stages

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

// Stage is one step of an aggregation pipeline. Compile returns the
// stage's wire document, whose only top-level key is the stage's
// protocol-reserved name.
type Stage interface {
	Compile() (bson.D, error)
}

// stageAliases maps builder parameter names to the wire keys they
// serialize under, per stage kind. Lookup is pure and value-independent;
// names missing from a stage's table are construction-time errors.
var stageAliases = map[string]map[string]string{
	"$lookup": {
		"right":    "from",
		"left_on":  "localField",
		"right_on": "foreignField",
		"name":     "as",
		"let":      "let",
		"pipeline": "pipeline",
	},
	"$bucket": {
		"by":         "groupBy",
		"boundaries": "boundaries",
		"default":    "default",
		"output":     "output",
	},
	"$bucketAuto": {
		"by":          "groupBy",
		"buckets":     "buckets",
		"output":      "output",
		"granularity": "granularity",
	},
	"$unwind": {
		"path_to_array":       "path",
		"include_array_index": "includeArrayIndex",
		"always":              "preserveNullAndEmptyArrays",
	},
	"$replaceRoot": {
		"path": "newRoot",
	},
}

// wireKey resolves a builder parameter name to its wire key for the
// given stage kind. Names absent from the stage's alias table are
// rejected; a stage kind with no table uses wire keys directly.
func wireKey(stage, name string) (string, error) {
	aliases, ok := stageAliases[stage]
	if !ok {
		return name, nil
	}
	key, ok := aliases[name]
	if !ok {
		return "", aggerr.Invalid(name, "unknown parameter for %s stage", stage)
	}
	return key, nil
}

// fieldPath normalizes a grouping parameter: strings become "$"-prefixed
// field paths, everything else is treated as an expression and resolved
// at compile time.
func fieldPath(param string, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, aggerr.Invalid(param, "required parameter is missing")
	case string:
		fp, err := expr.Field(t)
		if err != nil {
			return nil, aggerr.Invalid(param, "invalid field path %q", t)
		}
		return fp, nil
	case expr.FieldPath, expr.Variable:
		return t, nil
	default:
		return t, nil
	}
}

// resolveMap compiles a caller-supplied field mapping into an ordered
// document, sorting keys so repeated compiles are byte-identical.
func resolveMap(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: expr.Resolve(m[k])})
	}
	return doc
}
