package atlas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/atlas"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

func TestSearchDefaults(t *testing.T) {
	s, err := atlas.New()
	require.NoError(t, err)

	doc, err := s.Compile()
	require.NoError(t, err)
	want := bson.D{{Key: "$search", Value: bson.D{
		{Key: "index", Value: "default"},
		{Key: "compound", Value: bson.D{}},
	}}}
	assert.Equal(t, want, doc)

	c, ok := s.Operator().(*atlas.Compound)
	require.True(t, ok)
	assert.Equal(t, 0, c.MinimumShouldMatch())
}

func TestSearchCollectorXorOperator(t *testing.T) {
	text, err := atlas.NewText("beach", "description", nil, nil, "")
	require.NoError(t, err)
	facet, err := atlas.NewFacet(nil, map[string]atlas.FacetField{
		"types": mustStringFacet(t, "room_type", 0),
	})
	require.NoError(t, err)

	_, err = atlas.New(atlas.WithOperator(text), atlas.WithCollector(facet))
	var verr *aggerr.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = atlas.New(atlas.WithOperator(nil))
	require.Error(t, err)

	_, err = atlas.New(atlas.WithCollector(nil))
	require.Error(t, err)
}

func mustStringFacet(t *testing.T, path string, buckets int) *atlas.StringFacet {
	t.Helper()
	f, err := atlas.NewStringFacet(path, buckets)
	require.NoError(t, err)
	return f
}

func TestSearchText(t *testing.T) {
	s, err := atlas.NewSearchText("surfer", "description", atlas.WithIndex("listings"))
	require.NoError(t, err)

	doc, err := s.Compile()
	require.NoError(t, err)
	want := bson.D{{Key: "$search", Value: bson.D{
		{Key: "index", Value: "listings"},
		{Key: "text", Value: bson.D{
			{Key: "query", Value: "surfer"},
			{Key: "path", Value: "description"},
		}},
	}}}
	assert.Equal(t, want, doc)
}

func TestSearchOptions(t *testing.T) {
	count, err := atlas.NewCount("total", 0)
	require.NoError(t, err)
	highlight, err := atlas.NewHighlight("description", 0, 0)
	require.NoError(t, err)

	s, err := atlas.New(
		atlas.WithCount(count),
		atlas.WithHighlight(highlight),
		atlas.WithReturnStoredSource(),
		atlas.WithScoreDetails(),
	)
	require.NoError(t, err)

	doc, err := s.Compile()
	require.NoError(t, err)
	body := doc[0].Value.(bson.D)
	keys := make([]string, 0, len(body))
	for _, e := range body {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{
		"index", "compound", "count", "highlight",
		"returnStoredSource", "scoreDetails",
	}, keys)
}

func TestSearchFluentClauses(t *testing.T) {
	s, err := atlas.New(atlas.WithMinimumShouldMatch(1))
	require.NoError(t, err)

	s.Text(atlas.ClauseShould, "beach", "description", nil, nil, "").
		Range(atlas.ClauseFilter, "price", atlas.RangeBounds{Lte: 300}, nil)
	require.NoError(t, s.Err())

	doc, err := s.Compile()
	require.NoError(t, err)
	compound := doc[0].Value.(bson.D)[1]
	require.Equal(t, "compound", compound.Key)
	body := compound.Value.(bson.D)
	require.Len(t, body, 3)
	assert.Equal(t, "should", body[0].Key)
	assert.Equal(t, "filter", body[1].Key)
	assert.Equal(t, bson.E{Key: "minimumShouldMatch", Value: 1}, body[2])
}

// Clause helpers only apply to a compound operator; on any other
// operator kind they record a TypeError naming that operator.
func TestSearchClauseOnNonCompound(t *testing.T) {
	s, err := atlas.NewSearchText("surfer", "description")
	require.NoError(t, err)

	s.Equals(atlas.ClauseMust, "verified", true, nil)

	var terr *aggerr.TypeError
	require.ErrorAs(t, s.Err(), &terr)
	assert.Equal(t, "Equals", terr.Method)
	assert.Equal(t, "text", terr.Operator)
	assert.Equal(t, `cannot call Equals on "text" operator`, terr.Error())

	_, err = s.Compile()
	assert.ErrorAs(t, err, &terr)
}

func TestSearchNestedCompound(t *testing.T) {
	s, err := atlas.New()
	require.NoError(t, err)

	child := s.Compound(atlas.ClauseMust, 0)
	require.NotNil(t, child)
	child.Exists(atlas.ClauseMust, "description")

	doc, err := s.Compile()
	require.NoError(t, err)
	compound := doc[0].Value.(bson.D)[1].Value.(bson.D)
	require.Len(t, compound, 1)
	assert.Equal(t, "must", compound[0].Key)
}

func TestSearchNestedCompoundOnNonCompound(t *testing.T) {
	s, err := atlas.NewSearchText("surfer", "description")
	require.NoError(t, err)

	child := s.Compound(atlas.ClauseMust, 0)
	assert.Nil(t, child)

	var terr *aggerr.TypeError
	require.ErrorAs(t, s.Err(), &terr)
	assert.Equal(t, "Compound", terr.Method)
}

// A clause error inside the compound surfaces through the stage.
func TestSearchClauseErrorSurfaces(t *testing.T) {
	s, err := atlas.New()
	require.NoError(t, err)

	s.Text(atlas.ClauseMust, "", "description", nil, nil, "")

	var verr *aggerr.ValidationError
	require.ErrorAs(t, s.Err(), &verr)
	_, err = s.Compile()
	assert.Error(t, err)
}

func TestSearchFacetCollector(t *testing.T) {
	facet, err := atlas.NewFacet(nil, map[string]atlas.FacetField{
		"types": mustStringFacet(t, "room_type", 5),
	})
	require.NoError(t, err)

	s, err := atlas.NewSearchFacet(facet)
	require.NoError(t, err)

	doc, err := s.Compile()
	require.NoError(t, err)
	want := bson.D{{Key: "$search", Value: bson.D{
		{Key: "index", Value: "default"},
		{Key: "facet", Value: bson.D{
			{Key: "facets", Value: bson.D{
				{Key: "types", Value: bson.D{
					{Key: "type", Value: "string"},
					{Key: "path", Value: "room_type"},
					{Key: "numBuckets", Value: 5},
				}},
			}},
		}},
	}}}
	assert.Equal(t, want, doc)
}

func TestSearchMeta(t *testing.T) {
	text, err := atlas.NewText("beach", "description", nil, nil, "")
	require.NoError(t, err)
	facet, err := atlas.NewFacet(text, map[string]atlas.FacetField{
		"beds": mustNumericFacet(t, "beds", []any{1, 2, 4, 8}),
	})
	require.NoError(t, err)

	s, err := atlas.NewMeta(atlas.WithCollector(facet))
	require.NoError(t, err)

	doc, err := s.Compile()
	require.NoError(t, err)
	require.Equal(t, "$searchMeta", doc[0].Key)
	body := doc[0].Value.(bson.D)
	assert.Equal(t, "index", body[0].Key)
	require.Equal(t, "facet", body[1].Key)
	facetBody := body[1].Value.(bson.D)
	assert.Equal(t, "operator", facetBody[0].Key)
	assert.Equal(t, "facets", facetBody[1].Key)
}

func mustNumericFacet(t *testing.T, path string, boundaries []any) *atlas.NumericFacet {
	t.Helper()
	f, err := atlas.NewNumericFacet(path, boundaries, "")
	require.NoError(t, err)
	return f
}

func TestFacetValidation(t *testing.T) {
	_, err := atlas.NewFacet(nil, nil)
	require.Error(t, err)

	_, err = atlas.NewFacet(nil, map[string]atlas.FacetField{"x": nil})
	require.Error(t, err)

	_, err = atlas.NewStringFacet("", 0)
	require.Error(t, err)

	_, err = atlas.NewNumericFacet("price", []any{100}, "")
	require.Error(t, err)

	_, err = atlas.NewDateFacet("created", []any{1}, "")
	require.Error(t, err)
}

// Facet names compile in sorted order so repeated compiles are
// byte-identical.
func TestFacetSortedNames(t *testing.T) {
	facet, err := atlas.NewFacet(nil, map[string]atlas.FacetField{
		"zeta":  mustStringFacet(t, "z", 0),
		"alpha": mustStringFacet(t, "a", 0),
	})
	require.NoError(t, err)

	body := facet.Statement()[0].Value.(bson.D)
	defs := body[0].Value.(bson.D)
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Key)
	assert.Equal(t, "zeta", defs[1].Key)
}
