package atlas

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// ClauseType names one of the compound operator's clause groups.
type ClauseType string

const (
	ClauseMust    ClauseType = "must"
	ClauseMustNot ClauseType = "mustNot"
	ClauseShould  ClauseType = "should"
	ClauseFilter  ClauseType = "filter"
)

// clauseOrder fixes the order clause groups appear in compiled output.
var clauseOrder = []ClauseType{ClauseMust, ClauseMustNot, ClauseShould, ClauseFilter}

// Compound combines other search operators into a single boolean query.
// Unlike the rest of the builder it is mutable: clause helpers append
// sub-operators in place and return the receiver for chaining. Each
// mutation validates its arguments immediately; the first failure sticks
// and is reported by Err and by the enclosing stage's Compile.
type Compound struct {
	clauses            map[ClauseType][]Operator
	minimumShouldMatch int
	err                error
}

// NewCompound builds an empty compound operator.
func NewCompound(minimumShouldMatch int) (*Compound, error) {
	if minimumShouldMatch < 0 {
		return nil, aggerr.Invalid("minimum_should_match", "must not be negative, got %d", minimumShouldMatch)
	}
	return &Compound{
		clauses:            make(map[ClauseType][]Operator),
		minimumShouldMatch: minimumShouldMatch,
	}, nil
}

// Err returns the first error recorded by a clause helper.
func (c *Compound) Err() error { return c.err }

// MinimumShouldMatch returns the number of should clauses that must
// match.
func (c *Compound) MinimumShouldMatch() int { return c.minimumShouldMatch }

func (c *Compound) Name() string { return "compound" }

// Append adds already-built operators to the named clause group,
// preserving insertion order.
func (c *Compound) Append(clause ClauseType, ops ...Operator) *Compound {
	if c.err != nil {
		return c
	}
	if err := validClause(clause); err != nil {
		c.err = err
		return c
	}
	c.clauses[clause] = append(c.clauses[clause], ops...)
	return c
}

// Autocomplete appends an autocomplete clause.
func (c *Compound) Autocomplete(clause ClauseType, query any, path, tokenOrder string, fuzzy *FuzzyOptions, score any) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewAutocomplete(query, path, tokenOrder, fuzzy, score)
	})
}

// Equals appends an equals clause.
func (c *Compound) Equals(clause ClauseType, path string, value any, score any) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewEquals(path, value, score)
	})
}

// Exists appends an exists clause.
func (c *Compound) Exists(clause ClauseType, path string) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewExists(path)
	})
}

// Range appends a range clause.
func (c *Compound) Range(clause ClauseType, path any, bounds RangeBounds, score any) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewRange(path, bounds, score)
	})
}

// Regex appends a regex clause.
func (c *Compound) Regex(clause ClauseType, query, path any, allowAnalyzedField bool, score any) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewRegex(query, path, allowAnalyzedField, score)
	})
}

// Text appends a text clause.
func (c *Compound) Text(clause ClauseType, query, path any, fuzzy *FuzzyOptions, score any, synonyms string) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewText(query, path, fuzzy, score, synonyms)
	})
}

// Wildcard appends a wildcard clause.
func (c *Compound) Wildcard(clause ClauseType, query, path any, allowAnalyzedField bool, score any) *Compound {
	return c.add(clause, func() (Operator, error) {
		return NewWildcard(query, path, allowAnalyzedField, score)
	})
}

// Compound appends a nested compound to the named clause group and
// returns the child so callers can populate it.
func (c *Compound) Compound(clause ClauseType, minimumShouldMatch int) *Compound {
	if c.err != nil {
		return c
	}
	if err := validClause(clause); err != nil {
		c.err = err
		return c
	}
	child, err := NewCompound(minimumShouldMatch)
	if err != nil {
		c.err = err
		return c
	}
	c.clauses[clause] = append(c.clauses[clause], child)
	return child
}

func (c *Compound) add(clause ClauseType, build func() (Operator, error)) *Compound {
	if c.err != nil {
		return c
	}
	if err := validClause(clause); err != nil {
		c.err = err
		return c
	}
	op, err := build()
	if err != nil {
		c.err = err
		return c
	}
	c.clauses[clause] = append(c.clauses[clause], op)
	return c
}

func validClause(clause ClauseType) error {
	switch clause {
	case ClauseMust, ClauseMustNot, ClauseShould, ClauseFilter:
		return nil
	default:
		return aggerr.Invalid("type", "unknown clause type %q", string(clause))
	}
}

// Statement compiles the compound. Clause groups appear in the fixed
// order must, mustNot, should, filter; empty groups are omitted rather
// than emitted as empty arrays, and sub-operators keep their per-clause
// insertion order. A nested compound that recorded an error compiles to
// its partial state; callers surface such errors through Err before
// compiling.
func (c *Compound) Statement() bson.D {
	body := bson.D{}
	for _, clause := range clauseOrder {
		ops := c.clauses[clause]
		if len(ops) == 0 {
			continue
		}
		arr := make(bson.A, 0, len(ops))
		for _, op := range ops {
			arr = append(arr, op.Statement())
		}
		body = append(body, bson.E{Key: string(clause), Value: arr})
	}
	if c.minimumShouldMatch > 0 {
		body = append(body, bson.E{Key: "minimumShouldMatch", Value: c.minimumShouldMatch})
	}
	return bson.D{{Key: c.Name(), Value: body}}
}
