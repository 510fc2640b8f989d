package atlas

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// Operator is a node of the search operator tree. Statement compiles the
// node into its single-key wire document, keyed by Name.
type Operator interface {
	Name() string
	Statement() bson.D
}

// Equals matches documents whose field equals a value.
type Equals struct {
	path  string
	value any
	score any
}

// NewEquals builds an equals operator. score is an optional scoring
// document.
func NewEquals(path string, value any, score any) (*Equals, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "path must not be empty")
	}
	return &Equals{path: path, value: value, score: score}, nil
}

func (o *Equals) Name() string { return "equals" }

func (o *Equals) Statement() bson.D {
	body := bson.D{
		{Key: "path", Value: o.path},
		{Key: "value", Value: o.value},
	}
	if o.score != nil {
		body = append(body, bson.E{Key: "score", Value: o.score})
	}
	return bson.D{{Key: o.Name(), Value: body}}
}

// Exists matches documents where a field is present.
type Exists struct {
	path string
}

// NewExists builds an exists operator.
func NewExists(path string) (*Exists, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "path must not be empty")
	}
	return &Exists{path: path}, nil
}

func (o *Exists) Name() string { return "exists" }

func (o *Exists) Statement() bson.D {
	return bson.D{{Key: o.Name(), Value: bson.D{{Key: "path", Value: o.path}}}}
}

// Text performs analyzed full-text search.
type Text struct {
	query    any
	path     any
	fuzzy    *FuzzyOptions
	score    any
	synonyms string
}

// NewText builds a text operator. query and path are a string or list of
// strings; fuzzy, score and synonyms are optional.
func NewText(query, path any, fuzzy *FuzzyOptions, score any, synonyms string) (*Text, error) {
	q, err := searchQuery("query", query)
	if err != nil {
		return nil, err
	}
	p, err := searchPath("path", path)
	if err != nil {
		return nil, err
	}
	if fuzzy != nil && synonyms != "" {
		return nil, aggerr.Invalid("synonyms", "fuzzy and synonyms cannot be combined")
	}
	return &Text{query: q, path: p, fuzzy: fuzzy, score: score, synonyms: synonyms}, nil
}

func (o *Text) Name() string { return "text" }

func (o *Text) Statement() bson.D {
	body := bson.D{
		{Key: "query", Value: o.query},
		{Key: "path", Value: o.path},
	}
	if o.fuzzy != nil {
		body = append(body, bson.E{Key: "fuzzy", Value: o.fuzzy.Statement()})
	}
	if o.score != nil {
		body = append(body, bson.E{Key: "score", Value: o.score})
	}
	if o.synonyms != "" {
		body = append(body, bson.E{Key: "synonyms", Value: o.synonyms})
	}
	return bson.D{{Key: o.Name(), Value: body}}
}

// Regex interprets the query as a regular expression; the query field is
// not analyzed.
type Regex struct {
	query              any
	path               any
	allowAnalyzedField bool
	score              any
}

// NewRegex builds a regex operator.
func NewRegex(query, path any, allowAnalyzedField bool, score any) (*Regex, error) {
	q, err := searchQuery("query", query)
	if err != nil {
		return nil, err
	}
	p, err := searchPath("path", path)
	if err != nil {
		return nil, err
	}
	return &Regex{query: q, path: p, allowAnalyzedField: allowAnalyzedField, score: score}, nil
}

func (o *Regex) Name() string { return "regex" }

func (o *Regex) Statement() bson.D {
	return termStatement(o.Name(), o.query, o.path, o.allowAnalyzedField, o.score)
}

// Wildcard matches query strings containing special characters that can
// match any character.
type Wildcard struct {
	query              any
	path               any
	allowAnalyzedField bool
	score              any
}

// NewWildcard builds a wildcard operator.
func NewWildcard(query, path any, allowAnalyzedField bool, score any) (*Wildcard, error) {
	q, err := searchQuery("query", query)
	if err != nil {
		return nil, err
	}
	p, err := searchPath("path", path)
	if err != nil {
		return nil, err
	}
	return &Wildcard{query: q, path: p, allowAnalyzedField: allowAnalyzedField, score: score}, nil
}

func (o *Wildcard) Name() string { return "wildcard" }

func (o *Wildcard) Statement() bson.D {
	return termStatement(o.Name(), o.query, o.path, o.allowAnalyzedField, o.score)
}

// termStatement is the shared body shape of the term-level operators;
// allowAnalyzedField is always emitted since the engine default is a
// behavioral switch worth seeing in compiled output.
func termStatement(name string, query, path any, allowAnalyzedField bool, score any) bson.D {
	body := bson.D{
		{Key: "query", Value: query},
		{Key: "path", Value: path},
		{Key: "allowAnalyzedField", Value: allowAnalyzedField},
	}
	if score != nil {
		body = append(body, bson.E{Key: "score", Value: score})
	}
	return bson.D{{Key: name, Value: body}}
}

// Autocomplete performs search-as-you-type matching from an incomplete
// input string.
type Autocomplete struct {
	query      any
	path       string
	tokenOrder string
	fuzzy      *FuzzyOptions
	score      any
}

// NewAutocomplete builds an autocomplete operator. tokenOrder defaults to
// "any"; the only other accepted value is "sequential".
func NewAutocomplete(query any, path, tokenOrder string, fuzzy *FuzzyOptions, score any) (*Autocomplete, error) {
	q, err := searchQuery("query", query)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, aggerr.Invalid("path", "path must not be empty")
	}
	if tokenOrder == "" {
		tokenOrder = "any"
	}
	if tokenOrder != "any" && tokenOrder != "sequential" {
		return nil, aggerr.Invalid("token_order", `must be "any" or "sequential", got %q`, tokenOrder)
	}
	return &Autocomplete{query: q, path: path, tokenOrder: tokenOrder, fuzzy: fuzzy, score: score}, nil
}

func (o *Autocomplete) Name() string { return "autocomplete" }

func (o *Autocomplete) Statement() bson.D {
	body := bson.D{
		{Key: "query", Value: o.query},
		{Key: "path", Value: o.path},
		{Key: "tokenOrder", Value: o.tokenOrder},
	}
	if o.fuzzy != nil {
		body = append(body, bson.E{Key: "fuzzy", Value: o.fuzzy.Statement()})
	}
	if o.score != nil {
		body = append(body, bson.E{Key: "score", Value: o.score})
	}
	return bson.D{{Key: o.Name(), Value: body}}
}

// RangeBounds carries the bounds of a Range operator. At least one bound
// must be set.
type RangeBounds struct {
	Gt  any
	Gte any
	Lt  any
	Lte any
}

// Range matches values within numeric or date bounds.
type Range struct {
	path   any
	bounds RangeBounds
	score  any
}

// NewRange builds a range operator over path with the given bounds.
func NewRange(path any, bounds RangeBounds, score any) (*Range, error) {
	p, err := searchPath("path", path)
	if err != nil {
		return nil, err
	}
	if bounds.Gt == nil && bounds.Gte == nil && bounds.Lt == nil && bounds.Lte == nil {
		return nil, aggerr.Invalid("bounds", "at least one of gt, gte, lt, lte is required")
	}
	if bounds.Gt != nil && bounds.Gte != nil {
		return nil, aggerr.Invalid("bounds", "gt and gte are mutually exclusive")
	}
	if bounds.Lt != nil && bounds.Lte != nil {
		return nil, aggerr.Invalid("bounds", "lt and lte are mutually exclusive")
	}
	return &Range{path: p, bounds: bounds, score: score}, nil
}

func (o *Range) Name() string { return "range" }

// Statement emits bounds in the fixed order gt, gte, lt, lte, independent
// of how the caller filled RangeBounds.
func (o *Range) Statement() bson.D {
	body := bson.D{{Key: "path", Value: o.path}}
	for _, b := range []struct {
		key string
		val any
	}{
		{"gt", o.bounds.Gt},
		{"gte", o.bounds.Gte},
		{"lt", o.bounds.Lt},
		{"lte", o.bounds.Lte},
	} {
		if b.val != nil {
			body = append(body, bson.E{Key: b.key, Value: b.val})
		}
	}
	if o.score != nil {
		body = append(body, bson.E{Key: "score", Value: o.score})
	}
	return bson.D{{Key: o.Name(), Value: body}}
}

// MoreLikeThis matches documents similar to the given example documents.
type MoreLikeThis struct {
	like []any
}

// NewMoreLikeThis builds a moreLikeThis operator from one or more example
// documents.
func NewMoreLikeThis(like ...any) (*MoreLikeThis, error) {
	if len(like) == 0 {
		return nil, aggerr.Invalid("like", "at least one example document is required")
	}
	return &MoreLikeThis{like: like}, nil
}

func (o *MoreLikeThis) Name() string { return "moreLikeThis" }

func (o *MoreLikeThis) Statement() bson.D {
	var like any = o.like
	if len(o.like) == 1 {
		like = o.like[0]
	}
	return bson.D{{Key: o.Name(), Value: bson.D{{Key: "like", Value: like}}}}
}
