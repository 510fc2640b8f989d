// Package mongoexec executes compiled aggregation statements against a
// MongoDB database through the official driver. It is the one place the
// builder touches the network; pipelines compiled elsewhere can be fed
// to any other executor implementing the same contract.
package mongoexec

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// Executor runs aggregation pipelines against one database.
type Executor struct {
	db  *mongo.Database
	log *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger attaches a logger; the default is a nop.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// New wraps an existing database handle.
func New(db *mongo.Database, opts ...Option) *Executor {
	e := &Executor{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect dials uri and returns an executor over the named database,
// plus a disconnect function for the underlying client.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Executor, func(context.Context) error, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return New(client.Database(database), opts...), client.Disconnect, nil
}

// Execute runs the compiled statements against collection and returns
// every result document. Driver errors are returned unchanged.
func (e *Executor) Execute(ctx context.Context, collection string, statements []bson.D) ([]bson.M, error) {
	e.log.Debug("aggregate",
		zap.String("collection", collection),
		zap.Int("stages", len(statements)))

	cursor, err := e.db.Collection(collection).Aggregate(ctx, statements)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
