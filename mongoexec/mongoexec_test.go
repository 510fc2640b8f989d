package mongoexec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap/zaptest"

	"github.com/qbloq/mongopipe"
	"github.com/qbloq/mongopipe/mongoexec"
	"github.com/qbloq/mongopipe/operators"
)

// Integration test backed by a throwaway MongoDB container. Skipped in
// short mode and when Docker is not available.
func TestExecutorAggregate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("skipping integration test, cannot start container: %v", err)
	}
	defer container.Terminate(ctx)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	exec, disconnect, err := mongoexec.Connect(ctx, uri, "mongopipe_test",
		mongoexec.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer disconnect(context.Background())

	seed(ctx, t, uri)

	t.Run("executor runs raw statements", func(t *testing.T) {
		rows, err := exec.Execute(ctx, "orders", []bson.D{
			{{Key: "$match", Value: bson.D{{Key: "status", Value: "A"}}}},
			{{Key: "$sort", Value: bson.D{{Key: "item", Value: 1}}}},
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "almonds", rows[0]["item"])
		assert.Equal(t, "pecans", rows[1]["item"])
	})

	t.Run("pipeline runs end to end", func(t *testing.T) {
		rows, err := mongopipe.New("orders", mongopipe.WithExecutor(exec)).
			Group("status", map[string]any{
				"total": operators.Sum("$qty"),
			}).
			SortFields(true, "_id").
			Run(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "A", rows[0]["_id"])
		assert.EqualValues(t, 17, rows[0]["total"])
		assert.Equal(t, "B", rows[1]["_id"])
		assert.EqualValues(t, 20, rows[1]["total"])
	})

	t.Run("invalid statement surfaces the driver error", func(t *testing.T) {
		_, err := exec.Execute(ctx, "orders", []bson.D{
			{{Key: "$noSuchStage", Value: 1}},
		})
		assert.Error(t, err)
	})
}

func seed(ctx context.Context, t *testing.T, uri string) {
	t.Helper()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	coll := client.Database("mongopipe_test").Collection("orders")
	require.NoError(t, coll.Drop(ctx))

	_, err = coll.InsertMany(ctx, []any{
		bson.M{"item": "almonds", "status": "A", "qty": 12},
		bson.M{"item": "pecans", "status": "A", "qty": 5},
		bson.M{"item": "cashews", "status": "B", "qty": 20},
	})
	require.NoError(t, err)
}
