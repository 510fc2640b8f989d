package atlas

import (
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// FacetField is one facet definition inside a Facet collector.
type FacetField interface {
	facetBody() bson.D
}

// StringFacet buckets results by the distinct values of a string field.
type StringFacet struct {
	path       string
	numBuckets int
}

// NewStringFacet builds a string facet over path; numBuckets defaults to
// the engine's 10 when zero.
func NewStringFacet(path string, numBuckets int) (*StringFacet, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "facet path must not be empty")
	}
	if numBuckets < 0 {
		return nil, aggerr.Invalid("num_buckets", "must not be negative, got %d", numBuckets)
	}
	return &StringFacet{path: path, numBuckets: numBuckets}, nil
}

func (f *StringFacet) facetBody() bson.D {
	body := bson.D{
		{Key: "type", Value: "string"},
		{Key: "path", Value: f.path},
	}
	if f.numBuckets > 0 {
		body = append(body, bson.E{Key: "numBuckets", Value: f.numBuckets})
	}
	return body
}

// NumericFacet buckets results by caller-defined numeric boundaries.
type NumericFacet struct {
	path          string
	boundaries    []any
	defaultBucket string
}

// NewNumericFacet builds a numeric facet over path. boundaries must hold
// at least two values; defaultBucket optionally names the bucket for
// out-of-range values.
func NewNumericFacet(path string, boundaries []any, defaultBucket string) (*NumericFacet, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "facet path must not be empty")
	}
	if len(boundaries) < 2 {
		return nil, aggerr.Invalid("boundaries", "at least two boundary values are required, got %d", len(boundaries))
	}
	return &NumericFacet{path: path, boundaries: boundaries, defaultBucket: defaultBucket}, nil
}

func (f *NumericFacet) facetBody() bson.D {
	body := bson.D{
		{Key: "type", Value: "number"},
		{Key: "path", Value: f.path},
		{Key: "boundaries", Value: f.boundaries},
	}
	if f.defaultBucket != "" {
		body = append(body, bson.E{Key: "default", Value: f.defaultBucket})
	}
	return body
}

// DateFacet buckets results by caller-defined date boundaries.
type DateFacet struct {
	path          string
	boundaries    []any
	defaultBucket string
}

// NewDateFacet builds a date facet over path; the boundary contract is
// the same as NewNumericFacet's.
func NewDateFacet(path string, boundaries []any, defaultBucket string) (*DateFacet, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "facet path must not be empty")
	}
	if len(boundaries) < 2 {
		return nil, aggerr.Invalid("boundaries", "at least two boundary values are required, got %d", len(boundaries))
	}
	return &DateFacet{path: path, boundaries: boundaries, defaultBucket: defaultBucket}, nil
}

func (f *DateFacet) facetBody() bson.D {
	body := bson.D{
		{Key: "type", Value: "date"},
		{Key: "path", Value: f.path},
		{Key: "boundaries", Value: f.boundaries},
	}
	if f.defaultBucket != "" {
		body = append(body, bson.E{Key: "default", Value: f.defaultBucket})
	}
	return body
}

// Facet is the facet collector: it aggregates result metadata over named
// facet definitions, optionally narrowed by a search operator.
type Facet struct {
	operator Operator
	facets   map[string]FacetField
}

// NewFacet builds a facet collector. operator may be nil to facet over
// all documents; at least one facet definition is required.
func NewFacet(operator Operator, facets map[string]FacetField) (*Facet, error) {
	if len(facets) == 0 {
		return nil, aggerr.Invalid("facets", "at least one facet definition is required")
	}
	for name, f := range facets {
		if name == "" {
			return nil, aggerr.Invalid("facets", "facet name must not be empty")
		}
		if f == nil {
			return nil, aggerr.Invalid("facets", "facet %q has no definition", name)
		}
	}
	return &Facet{operator: operator, facets: facets}, nil
}

func (f *Facet) Name() string { return "facet" }

// Statement compiles the collector; facet names are emitted in sorted
// order so repeated compiles are byte-identical.
func (f *Facet) Statement() bson.D {
	names := make([]string, 0, len(f.facets))
	for name := range f.facets {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make(bson.D, 0, len(names))
	for _, name := range names {
		defs = append(defs, bson.E{Key: name, Value: f.facets[name].facetBody()})
	}

	body := bson.D{}
	if f.operator != nil {
		body = append(body, bson.E{Key: "operator", Value: f.operator.Statement()})
	}
	body = append(body, bson.E{Key: "facets", Value: defs})
	return bson.D{{Key: f.Name(), Value: body}}
}
