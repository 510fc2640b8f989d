package stages

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
)

// Group aggregates documents by a grouping expression, computing
// accumulator fields per group.
type Group struct {
	by    any
	query map[string]any
}

// NewGroup builds a $group stage. by is the grouping expression and may
// be nil to aggregate the whole input into one group (_id: null); strings
// are normalized to "$"-prefixed field paths. query maps output field
// names to accumulator expressions and is compiled in sorted key order.
func NewGroup(by any, query map[string]any) (*Group, error) {
	if by != nil {
		v, err := fieldPath("by", by)
		if err != nil {
			return nil, err
		}
		by = v
	}
	return &Group{by: by, query: query}, nil
}

func (s *Group) Compile() (bson.D, error) {
	body := bson.D{{Key: "_id", Value: expr.Resolve(s.by)}}
	body = append(body, resolveMap(s.query)...)
	return bson.D{{Key: "$group", Value: body}}, nil
}
