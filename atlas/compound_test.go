package atlas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/atlas"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

func TestCompoundEmpty(t *testing.T) {
	c, err := atlas.NewCompound(0)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "compound", Value: bson.D{}}}, c.Statement())

	_, err = atlas.NewCompound(-1)
	require.Error(t, err)
}

// Clause groups compile in the fixed order must, mustNot, should,
// filter, regardless of the order clauses were added; empty groups are
// omitted.
func TestCompoundClauseOrder(t *testing.T) {
	c, err := atlas.NewCompound(0)
	require.NoError(t, err)

	c.Text(atlas.ClauseShould, "varieties", "description", nil, nil, "").
		Exists(atlas.ClauseMust, "description").
		Equals(atlas.ClauseFilter, "verified", true, nil)
	require.NoError(t, c.Err())

	body := c.Statement()[0].Value.(bson.D)
	require.Len(t, body, 3)
	assert.Equal(t, "must", body[0].Key)
	assert.Equal(t, "should", body[1].Key)
	assert.Equal(t, "filter", body[2].Key)
}

func TestCompoundInsertionOrderWithinClause(t *testing.T) {
	c, err := atlas.NewCompound(0)
	require.NoError(t, err)

	c.Exists(atlas.ClauseMust, "first").
		Exists(atlas.ClauseMust, "second")
	require.NoError(t, c.Err())

	body := c.Statement()[0].Value.(bson.D)
	must := body[0].Value.(bson.A)
	require.Len(t, must, 2)
	assert.Equal(t, bson.D{{Key: "exists", Value: bson.D{{Key: "path", Value: "first"}}}}, must[0])
	assert.Equal(t, bson.D{{Key: "exists", Value: bson.D{{Key: "path", Value: "second"}}}}, must[1])
}

func TestCompoundMinimumShouldMatch(t *testing.T) {
	c, err := atlas.NewCompound(2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.MinimumShouldMatch())

	c.Text(atlas.ClauseShould, "beach", "description", nil, nil, "")
	require.NoError(t, c.Err())

	body := c.Statement()[0].Value.(bson.D)
	last := body[len(body)-1]
	assert.Equal(t, "minimumShouldMatch", last.Key)
	assert.Equal(t, 2, last.Value)
}

// A failing clause argument sticks: the first error is kept and later
// helpers are no-ops.
func TestCompoundStickyError(t *testing.T) {
	c, err := atlas.NewCompound(0)
	require.NoError(t, err)

	c.Text(atlas.ClauseMust, "", "description", nil, nil, "").
		Exists(atlas.ClauseMust, "description")

	var verr *aggerr.ValidationError
	require.ErrorAs(t, c.Err(), &verr)

	body := c.Statement()[0].Value.(bson.D)
	assert.Empty(t, body)
}

func TestCompoundUnknownClause(t *testing.T) {
	c, err := atlas.NewCompound(0)
	require.NoError(t, err)

	c.Exists(atlas.ClauseType("mightContain"), "description")
	var verr *aggerr.ValidationError
	require.ErrorAs(t, c.Err(), &verr)
	assert.Equal(t, "type", verr.Param)
}

func TestCompoundNested(t *testing.T) {
	parent, err := atlas.NewCompound(0)
	require.NoError(t, err)

	child := parent.Compound(atlas.ClauseShould, 1)
	child.Exists(atlas.ClauseMust, "description")
	require.NoError(t, parent.Err())
	require.NoError(t, child.Err())

	body := parent.Statement()[0].Value.(bson.D)
	require.Len(t, body, 1)
	should := body[0].Value.(bson.A)
	require.Len(t, should, 1)

	nested := should[0].(bson.D)
	assert.Equal(t, "compound", nested[0].Key)
	nestedBody := nested[0].Value.(bson.D)
	assert.Equal(t, "must", nestedBody[0].Key)
	assert.Equal(t, bson.E{Key: "minimumShouldMatch", Value: 1}, nestedBody[1])
}

func TestCompoundAppend(t *testing.T) {
	op, err := atlas.NewExists("description")
	require.NoError(t, err)

	c, err := atlas.NewCompound(0)
	require.NoError(t, err)
	c.Append(atlas.ClauseFilter, op)
	require.NoError(t, c.Err())

	body := c.Statement()[0].Value.(bson.D)
	require.Len(t, body, 1)
	assert.Equal(t, "filter", body[0].Key)
}
