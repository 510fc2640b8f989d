package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe"
	"github.com/qbloq/mongopipe/mongoexec"
	"github.com/qbloq/mongopipe/operators"
)

// demoPipeline builds the sample pipeline used by the demo and run
// commands, written against the Atlas sample_airbnb dataset: entire
// homes grouped by bed type with an average price per group.
func demoPipeline(collection string, opts ...mongopipe.Option) *mongopipe.Pipeline {
	return mongopipe.New(collection, opts...).
		Match(bson.M{"room_type": "Entire home/apt"}).
		Group("bed_type", map[string]any{
			"count":     operators.Sum(1),
			"avg_price": operators.Avg(mustField("price")),
		}).
		SortFields(false, "count").
		Limit(10)
}

func mustField(path string) any {
	f, err := mongopipe.Field(path)
	if err != nil {
		log.Fatalf("field %q: %s", path, err)
	}
	return f
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Compile the demo pipeline and print its statements",
		Run: func(cmd *cobra.Command, args []string) {
			conf := readConfig()
			statements, err := demoPipeline(conf.GetString("collection")).Compile()
			if err != nil {
				log.Fatalf("compile: %s", err)
			}
			for _, stage := range statements {
				out, err := bson.MarshalExtJSONIndent(stage, false, false, "", "  ")
				if err != nil {
					log.Fatalf("marshal: %s", err)
				}
				fmt.Println(string(out))
			}
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the demo pipeline against the configured database",
		Run: func(cmd *cobra.Command, args []string) {
			conf := readConfig()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			exec, disconnect, err := mongoexec.Connect(ctx,
				conf.GetString("uri"), conf.GetString("db"),
				mongoexec.WithLogger(log.Desugar()))
			if err != nil {
				log.Fatalf("connect: %s", err)
			}
			defer func() {
				if err := disconnect(context.Background()); err != nil {
					log.Warnf("disconnect: %s", err)
				}
			}()

			pipeline := demoPipeline(conf.GetString("collection"),
				mongopipe.WithExecutor(exec),
				mongopipe.WithOnCall(mongopipe.OnCallRun),
				mongopipe.WithLogger(log.Desugar()))

			rows, err := pipeline.Run(ctx)
			if err != nil {
				log.Fatalf("run: %s", err)
			}
			for _, row := range rows {
				out, err := bson.MarshalExtJSON(row, false, false)
				if err != nil {
					log.Fatalf("marshal: %s", err)
				}
				fmt.Println(string(out))
			}
		},
	}
}
