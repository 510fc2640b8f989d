package stages_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
	"github.com/qbloq/mongopipe/operators"
	"github.com/qbloq/mongopipe/stages"
)

func TestBucket(t *testing.T) {
	t.Run("boundaries and default", func(t *testing.T) {
		s, err := stages.NewBucket("year_born", []any{1840, 1850, 1860}, "Other", nil)
		require.NoError(t, err)
		want := bson.D{{Key: "$bucket", Value: bson.D{
			{Key: "groupBy", Value: "$year_born"},
			{Key: "boundaries", Value: []any{1840, 1850, 1860}},
			{Key: "default", Value: "Other"},
		}}}
		assert.Equal(t, want, compile(t, s))
	})

	t.Run("output in sorted key order", func(t *testing.T) {
		s, err := stages.NewBucket("price", []any{0, 100, 200}, nil, map[string]any{
			"titles": operators.Push("$title"),
			"count":  operators.Sum(1),
		})
		require.NoError(t, err)
		want := bson.D{{Key: "$bucket", Value: bson.D{
			{Key: "groupBy", Value: "$price"},
			{Key: "boundaries", Value: []any{0, 100, 200}},
			{Key: "output", Value: bson.D{
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "titles", Value: bson.D{{Key: "$push", Value: "$title"}}},
			}},
		}}}
		assert.Equal(t, want, compile(t, s))
	})

	t.Run("too few boundaries rejected", func(t *testing.T) {
		_, err := stages.NewBucket("price", []any{100}, nil, nil)
		var verr *aggerr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "boundaries", verr.Param)
	})
}

func TestBucketAuto(t *testing.T) {
	t.Run("unset keys compile to null", func(t *testing.T) {
		s, err := stages.NewBucketAuto("price", 5, nil, "")
		require.NoError(t, err)
		want := bson.D{{Key: "$bucketAuto", Value: bson.D{
			{Key: "groupBy", Value: "$price"},
			{Key: "buckets", Value: 5},
			{Key: "output", Value: nil},
			{Key: "granularity", Value: nil},
		}}}
		assert.Equal(t, want, compile(t, s))
	})

	t.Run("output replaces the implicit count", func(t *testing.T) {
		s, err := stages.NewBucketAuto("price", 4, map[string]any{
			"avg_price": operators.Avg("$price"),
		}, stages.GranularityR20)
		require.NoError(t, err)
		want := bson.D{{Key: "$bucketAuto", Value: bson.D{
			{Key: "groupBy", Value: "$price"},
			{Key: "buckets", Value: 4},
			{Key: "output", Value: bson.D{
				{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			}},
			{Key: "granularity", Value: "R20"},
		}}}
		assert.Equal(t, want, compile(t, s))
	})

	t.Run("non-positive bucket count rejected", func(t *testing.T) {
		_, err := stages.NewBucketAuto("price", 0, nil, "")
		var verr *aggerr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "buckets", verr.Param)
	})

	t.Run("unknown granularity rejected", func(t *testing.T) {
		_, err := stages.NewBucketAuto("price", 5, nil, "R15")
		var verr *aggerr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "granularity", verr.Param)
	})

	t.Run("every declared series is accepted", func(t *testing.T) {
		for _, g := range []stages.Granularity{
			stages.GranularityR5, stages.GranularityR10, stages.GranularityR20,
			stages.GranularityR40, stages.GranularityR80, stages.Granularity125,
			stages.GranularityE6, stages.GranularityE12, stages.GranularityE24,
			stages.GranularityE48, stages.GranularityE96, stages.GranularityE192,
			stages.GranularityPowersOf2,
		} {
			_, err := stages.NewBucketAuto("price", 5, nil, g)
			assert.NoError(t, err, string(g))
		}
	})
}
