package atlas

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// searchCore is the state shared by the $search and $searchMeta stages:
// index options plus exactly one of a collector or an operator.
type searchCore struct {
	index              string
	count              *CountOptions
	highlight          *Highlight
	returnStoredSource bool
	scoreDetails       bool

	collector *Facet
	operator  Operator

	err error
}

// Option configures a Search or SearchMeta stage at construction.
type Option func(*config)

type config struct {
	core               searchCore
	minimumShouldMatch int
	operatorSet        bool
	collectorSet       bool
}

// WithIndex selects the search index to query; the engine default is
// "default".
func WithIndex(index string) Option {
	return func(c *config) { c.core.index = index }
}

// WithCount requests a result count alongside the results.
func WithCount(count *CountOptions) Option {
	return func(c *config) { c.core.count = count }
}

// WithHighlight requests highlighted passages.
func WithHighlight(h *Highlight) Option {
	return func(c *config) { c.core.highlight = h }
}

// WithReturnStoredSource returns fields from the stored source instead of
// doing a full document lookup.
func WithReturnStoredSource() Option {
	return func(c *config) { c.core.returnStoredSource = true }
}

// WithScoreDetails includes score breakdowns in the results.
func WithScoreDetails() Option {
	return func(c *config) { c.core.scoreDetails = true }
}

// WithOperator sets the stage's operator tree. Mutually exclusive with
// WithCollector.
func WithOperator(op Operator) Option {
	return func(c *config) {
		c.core.operator = op
		c.operatorSet = true
	}
}

// WithCollector sets the stage's facet collector. Mutually exclusive with
// WithOperator.
func WithCollector(f *Facet) Option {
	return func(c *config) {
		c.core.collector = f
		c.collectorSet = true
	}
}

// WithMinimumShouldMatch sets the should-clause quorum of the default
// compound operator. It has no effect when an explicit operator or
// collector is supplied.
func WithMinimumShouldMatch(n int) Option {
	return func(c *config) { c.minimumShouldMatch = n }
}

// newCore applies options and enforces the collector-xor-operator rule:
// supplying both is an error, supplying neither installs an empty
// compound operator with the configured minimum-should-match quorum.
func newCore(opts []Option) (searchCore, error) {
	c := config{core: searchCore{index: "default"}}
	for _, opt := range opts {
		opt(&c)
	}
	switch {
	case c.operatorSet && c.collectorSet:
		return searchCore{}, aggerr.Invalid("operator", "only one of collector or operator can be provided")
	case c.operatorSet && c.core.operator == nil:
		return searchCore{}, aggerr.Invalid("operator", "operator must not be nil")
	case c.collectorSet && c.core.collector == nil:
		return searchCore{}, aggerr.Invalid("collector", "collector must not be nil")
	case !c.operatorSet && !c.collectorSet:
		compound, err := NewCompound(c.minimumShouldMatch)
		if err != nil {
			return searchCore{}, err
		}
		c.core.operator = compound
	}
	return c.core, nil
}

func (s *searchCore) compile(wire string) (bson.D, error) {
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.operator.(*Compound); ok && c.Err() != nil {
		return nil, c.Err()
	}
	body := bson.D{{Key: "index", Value: s.index}}
	if s.collector != nil {
		body = append(body, s.collector.Statement()...)
	} else {
		body = append(body, s.operator.Statement()...)
	}
	if s.count != nil {
		body = append(body, bson.E{Key: "count", Value: s.count.Statement()})
	}
	if s.highlight != nil {
		body = append(body, bson.E{Key: "highlight", Value: s.highlight.Statement()})
	}
	if s.returnStoredSource {
		body = append(body, bson.E{Key: "returnStoredSource", Value: true})
	}
	if s.scoreDetails {
		body = append(body, bson.E{Key: "scoreDetails", Value: true})
	}
	return bson.D{{Key: wire, Value: body}}, nil
}

// compound returns the core's operator as a compound, or a TypeError
// naming the actual operator when it is anything else.
func (s *searchCore) compound(method string) (*Compound, error) {
	c, ok := s.operator.(*Compound)
	if !ok {
		name := "collector"
		if s.operator != nil {
			name = s.operator.Name()
		} else if s.collector != nil {
			name = s.collector.Name()
		}
		return nil, &aggerr.TypeError{Method: method, Operator: name}
	}
	return c, nil
}

// Search is the $search pipeline stage: full-text search over an Atlas
// Search index, driven by an operator tree or a facet collector.
//
// When the operator is a compound (the default), the clause helpers below
// grow it in place, returning the stage for chaining; calling them with
// any other operator kind records a TypeError that Compile reports.
type Search struct {
	core searchCore
}

// New builds a $search stage. With no operator or collector option the
// stage starts as an empty compound query.
func New(opts ...Option) (*Search, error) {
	core, err := newCore(opts)
	if err != nil {
		return nil, err
	}
	return &Search{core: core}, nil
}

// NewSearchText builds a $search stage wrapping a single text operator.
func NewSearchText(query, path any, opts ...Option) (*Search, error) {
	op, err := NewText(query, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return New(append(opts, WithOperator(op))...)
}

// NewSearchFacet builds a $search stage around a facet collector.
func NewSearchFacet(collector *Facet, opts ...Option) (*Search, error) {
	return New(append(opts, WithCollector(collector))...)
}

// Err returns the first error recorded by a clause helper.
func (s *Search) Err() error { return s.core.err }

// Operator returns the stage's operator tree, nil when the stage uses a
// collector.
func (s *Search) Operator() Operator { return s.core.operator }

// Compile returns the stage's wire document.
func (s *Search) Compile() (bson.D, error) {
	return s.core.compile("$search")
}

// Autocomplete adds an autocomplete clause to the compound operator.
func (s *Search) Autocomplete(clause ClauseType, query any, path, tokenOrder string, fuzzy *FuzzyOptions, score any) *Search {
	return s.clause("Autocomplete", func(c *Compound) {
		c.Autocomplete(clause, query, path, tokenOrder, fuzzy, score)
	})
}

// Equals adds an equals clause to the compound operator.
func (s *Search) Equals(clause ClauseType, path string, value any, score any) *Search {
	return s.clause("Equals", func(c *Compound) {
		c.Equals(clause, path, value, score)
	})
}

// Exists adds an exists clause to the compound operator.
func (s *Search) Exists(clause ClauseType, path string) *Search {
	return s.clause("Exists", func(c *Compound) {
		c.Exists(clause, path)
	})
}

// Range adds a range clause to the compound operator.
func (s *Search) Range(clause ClauseType, path any, bounds RangeBounds, score any) *Search {
	return s.clause("Range", func(c *Compound) {
		c.Range(clause, path, bounds, score)
	})
}

// Regex adds a regex clause to the compound operator.
func (s *Search) Regex(clause ClauseType, query, path any, allowAnalyzedField bool, score any) *Search {
	return s.clause("Regex", func(c *Compound) {
		c.Regex(clause, query, path, allowAnalyzedField, score)
	})
}

// Text adds a text clause to the compound operator.
func (s *Search) Text(clause ClauseType, query, path any, fuzzy *FuzzyOptions, score any, synonyms string) *Search {
	return s.clause("Text", func(c *Compound) {
		c.Text(clause, query, path, fuzzy, score, synonyms)
	})
}

// Wildcard adds a wildcard clause to the compound operator.
func (s *Search) Wildcard(clause ClauseType, query, path any, allowAnalyzedField bool, score any) *Search {
	return s.clause("Wildcard", func(c *Compound) {
		c.Wildcard(clause, query, path, allowAnalyzedField, score)
	})
}

// Compound nests a child compound under the named clause group and
// returns it, or nil after recording an error when the current operator
// is not a compound.
func (s *Search) Compound(clause ClauseType, minimumShouldMatch int) *Compound {
	c, err := s.core.compound("Compound")
	if err != nil {
		s.recordErr(err)
		return nil
	}
	child := c.Compound(clause, minimumShouldMatch)
	s.recordErr(c.Err())
	return child
}

func (s *Search) clause(method string, apply func(*Compound)) *Search {
	if s.core.err != nil {
		return s
	}
	c, err := s.core.compound(method)
	if err != nil {
		s.core.err = err
		return s
	}
	apply(c)
	s.recordErr(c.Err())
	return s
}

func (s *Search) recordErr(err error) {
	if s.core.err == nil && err != nil {
		s.core.err = err
	}
}

// SearchMeta is the $searchMeta pipeline stage: it returns result
// metadata (counts, facets) instead of the documents themselves.
type SearchMeta struct {
	core searchCore
}

// NewMeta builds a $searchMeta stage under the same construction rules as
// New. It is most useful with a facet collector.
func NewMeta(opts ...Option) (*SearchMeta, error) {
	core, err := newCore(opts)
	if err != nil {
		return nil, err
	}
	return &SearchMeta{core: core}, nil
}

// Compile returns the stage's wire document.
func (s *SearchMeta) Compile() (bson.D, error) {
	return s.core.compile("$searchMeta")
}
