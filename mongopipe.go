// Package mongopipe builds, validates and compiles MongoDB aggregation
// pipelines. Stages are appended through typed constructors or the
// fluent helpers on Pipeline; compiling walks every stage and its nested
// expression nodes and yields the ordered list of single-key documents
// the server expects. Execution is delegated to an Executor collaborator
// such as the mongoexec package.
//
// Everything the builder constructs is validated eagerly: a value you
// hold compiles without error, and compiling is pure, so a pipeline may
// be compiled any number of times, including between appends.
package mongopipe

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/qbloq/mongopipe/atlas"
	"github.com/qbloq/mongopipe/internal/aggerr"
	"github.com/qbloq/mongopipe/stages"
)

// Stage is one step of an aggregation pipeline; see the stages package.
type Stage = stages.Stage

// Executor runs compiled statements against a collection and returns the
// resulting documents. Errors are surfaced to the caller unchanged; the
// builder performs no retry or classification.
type Executor interface {
	Execute(ctx context.Context, collection string, statements []bson.D) ([]bson.M, error)
}

// OnCall selects what Invoke does.
type OnCall string

const (
	// OnCallExport makes Invoke return the compiled statements.
	OnCallExport OnCall = "export"
	// OnCallRun makes Invoke execute the compiled statements through the
	// configured executor.
	OnCallRun OnCall = "run"
)

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithExecutor supplies the executor used in run mode.
func WithExecutor(e Executor) Option {
	return func(p *Pipeline) { p.executor = e }
}

// WithOnCall sets the Invoke dispatch mode; the default is export.
func WithOnCall(mode OnCall) Option {
	return func(p *Pipeline) { p.onCall = mode }
}

// WithLogger attaches a logger; the default is a nop.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// Pipeline is an ordered sequence of stages targeting a collection.
// Stage order is significant and preserved exactly through compilation.
//
// The fluent helpers construct a stage, record the first construction
// error, and return the pipeline for chaining; Err and Compile report
// that error. Concurrent appends must be serialized by the caller;
// compiled pipelines are safe for concurrent reads.
type Pipeline struct {
	collection string
	onCall     OnCall
	stages     []Stage
	executor   Executor
	log        *zap.Logger
	err        error
}

// New creates an empty pipeline over the named collection. The
// collection may be empty for pipelines compiled only for embedding,
// e.g. lookup sub-pipelines; run mode requires it.
func New(collection string, opts ...Option) *Pipeline {
	p := &Pipeline{
		collection: collection,
		onCall:     OnCallExport,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Collection returns the pipeline's target collection.
func (p *Pipeline) Collection() string { return p.collection }

// Err returns the first stage-construction error recorded by a fluent
// helper.
func (p *Pipeline) Err() error { return p.err }

// Len returns the number of appended stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Append adds already-built stages in order.
func (p *Pipeline) Append(stgs ...Stage) *Pipeline {
	p.stages = append(p.stages, stgs...)
	return p
}

func (p *Pipeline) add(s Stage, err error) *Pipeline {
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return p
	}
	p.stages = append(p.stages, s)
	return p
}

// Compile walks the stages in order and returns their wire documents.
// It is pure and idempotent: no state is cached, and compiling twice
// yields identical output.
func (p *Pipeline) Compile() ([]bson.D, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]bson.D, 0, len(p.stages))
	for _, s := range p.stages {
		doc, err := s.Compile()
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	p.log.Debug("pipeline compiled",
		zap.String("collection", p.collection),
		zap.Int("stages", len(out)))
	return out, nil
}

// Export is an alias for Compile.
func (p *Pipeline) Export() ([]bson.D, error) { return p.Compile() }

// Run compiles the pipeline and executes it through the configured
// executor. Executor errors are returned unchanged.
func (p *Pipeline) Run(ctx context.Context) ([]bson.M, error) {
	if p.executor == nil {
		return nil, &aggerr.ConfigurationError{Reason: "run mode requires an executor"}
	}
	if p.collection == "" {
		return nil, &aggerr.ConfigurationError{Reason: "run mode requires a target collection"}
	}
	statements, err := p.Compile()
	if err != nil {
		return nil, err
	}
	p.log.Debug("pipeline executing",
		zap.String("collection", p.collection),
		zap.Int("stages", len(statements)))
	return p.executor.Execute(ctx, p.collection, statements)
}

// Invoke dispatches on the pipeline's call mode: export mode returns the
// compiled []bson.D, run mode returns the executor's []bson.M.
func (p *Pipeline) Invoke(ctx context.Context) (any, error) {
	switch p.onCall {
	case OnCallRun:
		return p.Run(ctx)
	default:
		return p.Compile()
	}
}

// Match appends a $match stage.
func (p *Pipeline) Match(query any) *Pipeline {
	s, err := stages.NewMatch(query)
	return p.add(s, err)
}

// Project appends a $project stage.
func (p *Pipeline) Project(projection any) *Pipeline {
	s, err := stages.NewProject(projection)
	return p.add(s, err)
}

// Sort appends a $sort stage.
func (p *Pipeline) Sort(spec any) *Pipeline {
	s, err := stages.NewSort(spec)
	return p.add(s, err)
}

// SortFields appends a $sort stage over the given fields in one
// direction.
func (p *Pipeline) SortFields(ascending bool, fields ...string) *Pipeline {
	s, err := stages.NewSortFields(ascending, fields...)
	return p.add(s, err)
}

// SortByCount appends a $sortByCount stage.
func (p *Pipeline) SortByCount(by any) *Pipeline {
	s, err := stages.NewSortByCount(by)
	return p.add(s, err)
}

// Limit appends a $limit stage.
func (p *Pipeline) Limit(n int64) *Pipeline {
	s, err := stages.NewLimit(n)
	return p.add(s, err)
}

// Skip appends a $skip stage.
func (p *Pipeline) Skip(n int64) *Pipeline {
	s, err := stages.NewSkip(n)
	return p.add(s, err)
}

// Sample appends a $sample stage.
func (p *Pipeline) Sample(size int64) *Pipeline {
	s, err := stages.NewSample(size)
	return p.add(s, err)
}

// Count appends a $count stage.
func (p *Pipeline) Count(name string) *Pipeline {
	s, err := stages.NewCount(name)
	return p.add(s, err)
}

// Group appends a $group stage.
func (p *Pipeline) Group(by any, query map[string]any) *Pipeline {
	s, err := stages.NewGroup(by, query)
	return p.add(s, err)
}

// Unwind appends a $unwind stage.
func (p *Pipeline) Unwind(pathToArray string) *Pipeline {
	s, err := stages.NewUnwind(pathToArray, "", false)
	return p.add(s, err)
}

// Explode is an alias for Unwind.
func (p *Pipeline) Explode(pathToArray string) *Pipeline {
	return p.Unwind(pathToArray)
}

// Set appends a $set stage.
func (p *Pipeline) Set(fields map[string]any) *Pipeline {
	s, err := stages.NewSet(fields)
	return p.add(s, err)
}

// AddFields is an alias for Set; $addFields and $set share wire
// semantics.
func (p *Pipeline) AddFields(fields map[string]any) *Pipeline {
	return p.Set(fields)
}

// ReplaceRoot appends a $replaceRoot stage.
func (p *Pipeline) ReplaceRoot(path any) *Pipeline {
	s, err := stages.NewReplaceRoot(path)
	return p.add(s, err)
}

// ReplaceWith is an alias for ReplaceRoot.
func (p *Pipeline) ReplaceWith(path any) *Pipeline {
	return p.ReplaceRoot(path)
}

// Bucket appends a $bucket stage.
func (p *Pipeline) Bucket(by any, boundaries []any, defaultBucket any, output map[string]any) *Pipeline {
	s, err := stages.NewBucket(by, boundaries, defaultBucket, output)
	return p.add(s, err)
}

// BucketAuto appends a $bucketAuto stage.
func (p *Pipeline) BucketAuto(by any, buckets int, output map[string]any, granularity stages.Granularity) *Pipeline {
	s, err := stages.NewBucketAuto(by, buckets, output, granularity)
	return p.add(s, err)
}

// Lookup appends a $lookup stage.
func (p *Pipeline) Lookup(opts stages.LookupOpts) *Pipeline {
	s, err := stages.NewLookup(opts)
	return p.add(s, err)
}

// Out appends a $out stage.
func (p *Pipeline) Out(collection string, db ...string) *Pipeline {
	s, err := stages.NewOut(collection, db...)
	return p.add(s, err)
}

// Merge appends a $merge stage.
func (p *Pipeline) Merge(into string) *Pipeline {
	s, err := stages.NewMerge(into)
	return p.add(s, err)
}

// Search appends a $search stage; see the atlas package for options and
// the compound clause helpers.
func (p *Pipeline) Search(opts ...atlas.Option) *Pipeline {
	s, err := atlas.New(opts...)
	return p.add(s, err)
}

// SearchMeta appends a $searchMeta stage.
func (p *Pipeline) SearchMeta(opts ...atlas.Option) *Pipeline {
	s, err := atlas.NewMeta(opts...)
	return p.add(s, err)
}
