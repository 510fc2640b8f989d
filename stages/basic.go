package stages

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

// Match filters documents against a query document.
type Match struct {
	query any
}

// NewMatch builds a $match stage from a query document or expression.
func NewMatch(query any) (*Match, error) {
	if query == nil {
		return nil, aggerr.Invalid("query", "required parameter is missing")
	}
	return &Match{query: query}, nil
}

func (s *Match) Compile() (bson.D, error) {
	return bson.D{{Key: "$match", Value: expr.Resolve(s.query)}}, nil
}

// Project reshapes documents by including, excluding or computing fields.
type Project struct {
	projection any
}

// NewProject builds a $project stage. projection is a document mapping
// field names to inclusion flags or expressions; maps are compiled in
// sorted key order.
func NewProject(projection any) (*Project, error) {
	if projection == nil {
		return nil, aggerr.Invalid("projection", "required parameter is missing")
	}
	if m, ok := projection.(map[string]any); ok && len(m) == 0 {
		return nil, aggerr.Invalid("projection", "must not be empty")
	}
	return &Project{projection: projection}, nil
}

func (s *Project) Compile() (bson.D, error) {
	if m, ok := s.projection.(map[string]any); ok {
		return bson.D{{Key: "$project", Value: resolveMap(m)}}, nil
	}
	return bson.D{{Key: "$project", Value: expr.Resolve(s.projection)}}, nil
}

// Sort orders documents by one or more fields.
type Sort struct {
	spec bson.D
}

// NewSort builds a $sort stage. spec is either a bson.D of field/direction
// pairs, kept in the given order, or a map compiled in sorted key order.
func NewSort(spec any) (*Sort, error) {
	switch t := spec.(type) {
	case bson.D:
		if len(t) == 0 {
			return nil, aggerr.Invalid("spec", "must not be empty")
		}
		return &Sort{spec: t}, nil
	case map[string]any:
		if len(t) == 0 {
			return nil, aggerr.Invalid("spec", "must not be empty")
		}
		return &Sort{spec: resolveMap(t)}, nil
	case bson.M:
		return NewSort(map[string]any(t))
	default:
		return nil, aggerr.Invalid("spec", "must be a document of field/direction pairs")
	}
}

// NewSortFields builds a $sort stage ordering by the given fields, all in
// the same direction, preserving field order.
func NewSortFields(ascending bool, fields ...string) (*Sort, error) {
	if len(fields) == 0 {
		return nil, aggerr.Invalid("fields", "at least one sort field is required")
	}
	direction := 1
	if !ascending {
		direction = -1
	}
	spec := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			return nil, aggerr.Invalid("fields", "sort field must not be empty")
		}
		spec = append(spec, bson.E{Key: f, Value: direction})
	}
	return &Sort{spec: spec}, nil
}

func (s *Sort) Compile() (bson.D, error) {
	return bson.D{{Key: "$sort", Value: s.spec}}, nil
}

// SortByCount groups documents by an expression and sorts the groups by
// descending count.
type SortByCount struct {
	by any
}

// NewSortByCount builds a $sortByCount stage. Strings are normalized to
// "$"-prefixed field paths.
func NewSortByCount(by any) (*SortByCount, error) {
	v, err := fieldPath("by", by)
	if err != nil {
		return nil, err
	}
	return &SortByCount{by: v}, nil
}

func (s *SortByCount) Compile() (bson.D, error) {
	return bson.D{{Key: "$sortByCount", Value: expr.Resolve(s.by)}}, nil
}

// Limit caps the number of documents passed downstream.
type Limit struct {
	n int64
}

// NewLimit builds a $limit stage; n must be positive.
func NewLimit(n int64) (*Limit, error) {
	if n <= 0 {
		return nil, aggerr.Invalid("n", "must be a positive integer, got %d", n)
	}
	return &Limit{n: n}, nil
}

func (s *Limit) Compile() (bson.D, error) {
	return bson.D{{Key: "$limit", Value: s.n}}, nil
}

// Skip drops the first n documents.
type Skip struct {
	n int64
}

// NewSkip builds a $skip stage; n must not be negative.
func NewSkip(n int64) (*Skip, error) {
	if n < 0 {
		return nil, aggerr.Invalid("n", "must not be negative, got %d", n)
	}
	return &Skip{n: n}, nil
}

func (s *Skip) Compile() (bson.D, error) {
	return bson.D{{Key: "$skip", Value: s.n}}, nil
}

// Sample selects a random subset of documents.
type Sample struct {
	size int64
}

// NewSample builds a $sample stage; size must be positive.
func NewSample(size int64) (*Sample, error) {
	if size <= 0 {
		return nil, aggerr.Invalid("size", "must be a positive integer, got %d", size)
	}
	return &Sample{size: size}, nil
}

func (s *Sample) Compile() (bson.D, error) {
	return bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: s.size}}}}, nil
}

// Count writes the number of remaining documents to a named field.
type Count struct {
	name string
}

// NewCount builds a $count stage writing to the named output field.
func NewCount(name string) (*Count, error) {
	if name == "" {
		return nil, aggerr.Invalid("name", "output field name must not be empty")
	}
	return &Count{name: name}, nil
}

func (s *Count) Compile() (bson.D, error) {
	return bson.D{{Key: "$count", Value: s.name}}, nil
}

// Unwind deconstructs an array field, emitting one document per element.
type Unwind struct {
	pathToArray       string
	includeArrayIndex string
	always            bool
}

// NewUnwind builds a $unwind stage over the array at pathToArray.
// includeArrayIndex optionally names a field to hold the element index;
// always keeps documents whose array is null, missing or empty.
func NewUnwind(pathToArray, includeArrayIndex string, always bool) (*Unwind, error) {
	fp, err := expr.Field(pathToArray)
	if err != nil {
		return nil, aggerr.Invalid("path_to_array", "invalid field path %q", pathToArray)
	}
	return &Unwind{
		pathToArray:       string(fp),
		includeArrayIndex: includeArrayIndex,
		always:            always,
	}, nil
}

func (s *Unwind) Compile() (bson.D, error) {
	if s.includeArrayIndex == "" && !s.always {
		return bson.D{{Key: "$unwind", Value: s.pathToArray}}, nil
	}
	body := bson.D{}
	for _, p := range []struct {
		name string
		val  any
		set  bool
	}{
		{"path_to_array", s.pathToArray, true},
		{"include_array_index", s.includeArrayIndex, s.includeArrayIndex != ""},
		{"always", s.always, s.always},
	} {
		if !p.set {
			continue
		}
		key, err := wireKey("$unwind", p.name)
		if err != nil {
			return nil, err
		}
		body = append(body, bson.E{Key: key, Value: p.val})
	}
	return bson.D{{Key: "$unwind", Value: body}}, nil
}

// Set adds or overwrites fields; the wire form of add-fields.
type Set struct {
	fields map[string]any
}

// NewSet builds a $set stage from a field/expression mapping, compiled in
// sorted key order.
func NewSet(fields map[string]any) (*Set, error) {
	if len(fields) == 0 {
		return nil, aggerr.Invalid("fields", "at least one field is required")
	}
	return &Set{fields: fields}, nil
}

func (s *Set) Compile() (bson.D, error) {
	return bson.D{{Key: "$set", Value: resolveMap(s.fields)}}, nil
}

// ReplaceRoot promotes an embedded document to the document root.
type ReplaceRoot struct {
	path any
}

// NewReplaceRoot builds a $replaceRoot stage. Strings are normalized to
// "$"-prefixed field paths; any other value is used as the newRoot
// expression.
func NewReplaceRoot(path any) (*ReplaceRoot, error) {
	v, err := fieldPath("path", path)
	if err != nil {
		return nil, err
	}
	return &ReplaceRoot{path: v}, nil
}

func (s *ReplaceRoot) Compile() (bson.D, error) {
	key, err := wireKey("$replaceRoot", "path")
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: key, Value: expr.Resolve(s.path)}}}}, nil
}

// Out writes the pipeline result to a collection. Terminal: it may not
// appear inside a lookup sub-pipeline.
type Out struct {
	db         string
	collection string
}

// NewOut builds a $out stage targeting collection, optionally in another
// database.
func NewOut(collection string, db ...string) (*Out, error) {
	if collection == "" {
		return nil, aggerr.Invalid("collection", "target collection must not be empty")
	}
	s := &Out{collection: collection}
	if len(db) > 0 {
		s.db = db[0]
	}
	return s, nil
}

func (s *Out) Compile() (bson.D, error) {
	if s.db == "" {
		return bson.D{{Key: "$out", Value: s.collection}}, nil
	}
	return bson.D{{Key: "$out", Value: bson.D{
		{Key: "db", Value: s.db},
		{Key: "coll", Value: s.collection},
	}}}, nil
}

// Merge writes the pipeline result into an existing collection. Terminal:
// it may not appear inside a lookup sub-pipeline.
type Merge struct {
	into string
}

// NewMerge builds a $merge stage targeting the named collection.
func NewMerge(into string) (*Merge, error) {
	if into == "" {
		return nil, aggerr.Invalid("into", "target collection must not be empty")
	}
	return &Merge{into: into}, nil
}

func (s *Merge) Compile() (bson.D, error) {
	return bson.D{{Key: "$merge", Value: bson.D{{Key: "into", Value: s.into}}}}, nil
}
