package stages

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/expr"
	"github.com/qbloq/mongopipe/internal/aggerr"
)

// Granularity is a preferred-number series tag used by $bucketAuto to
// round bucket boundaries.
type Granularity string

const (
	GranularityR5        Granularity = "R5"
	GranularityR10       Granularity = "R10"
	GranularityR20       Granularity = "R20"
	GranularityR40       Granularity = "R40"
	GranularityR80       Granularity = "R80"
	Granularity125       Granularity = "1-2-5"
	GranularityE6        Granularity = "E6"
	GranularityE12       Granularity = "E12"
	GranularityE24       Granularity = "E24"
	GranularityE48       Granularity = "E48"
	GranularityE96       Granularity = "E96"
	GranularityE192      Granularity = "E192"
	GranularityPowersOf2 Granularity = "POWERSOF2"
)

var granularities = map[Granularity]bool{
	GranularityR5: true, GranularityR10: true, GranularityR20: true,
	GranularityR40: true, GranularityR80: true, Granularity125: true,
	GranularityE6: true, GranularityE12: true, GranularityE24: true,
	GranularityE48: true, GranularityE96: true, GranularityE192: true,
	GranularityPowersOf2: true,
}

// Bucket groups documents into caller-defined boundary buckets.
type Bucket struct {
	by            any
	boundaries    []any
	defaultBucket any
	output        map[string]any
}

// NewBucket builds a $bucket stage. boundaries must hold at least two
// values; defaultBucket optionally names the bucket for out-of-range
// documents. output maps field names to accumulator expressions and is
// compiled in sorted key order.
func NewBucket(by any, boundaries []any, defaultBucket any, output map[string]any) (*Bucket, error) {
	v, err := fieldPath("by", by)
	if err != nil {
		return nil, err
	}
	if len(boundaries) < 2 {
		return nil, aggerr.Invalid("boundaries", "at least two boundary values are required, got %d", len(boundaries))
	}
	return &Bucket{by: v, boundaries: boundaries, defaultBucket: defaultBucket, output: output}, nil
}

func (s *Bucket) Compile() (bson.D, error) {
	body := bson.D{}
	add := func(name string, v any) error {
		key, err := wireKey("$bucket", name)
		if err != nil {
			return err
		}
		body = append(body, bson.E{Key: key, Value: v})
		return nil
	}
	if err := add("by", expr.Resolve(s.by)); err != nil {
		return nil, err
	}
	if err := add("boundaries", expr.Resolve(s.boundaries)); err != nil {
		return nil, err
	}
	if s.defaultBucket != nil {
		if err := add("default", expr.Resolve(s.defaultBucket)); err != nil {
			return nil, err
		}
	}
	if s.output != nil {
		if err := add("output", resolveMap(s.output)); err != nil {
			return nil, err
		}
	}
	return bson.D{{Key: "$bucket", Value: body}}, nil
}

// BucketAuto groups documents into a requested number of automatically
// bounded buckets.
type BucketAuto struct {
	by          any
	buckets     int
	output      map[string]any
	granularity Granularity
}

// NewBucketAuto builds a $bucketAuto stage. buckets must be positive.
// output maps field names to accumulator expressions; when provided, the
// engine's implicit count field is not added, so callers wanting a count
// must include it themselves. granularity may be empty or one of the
// Granularity tags.
func NewBucketAuto(by any, buckets int, output map[string]any, granularity Granularity) (*BucketAuto, error) {
	v, err := fieldPath("by", by)
	if err != nil {
		return nil, err
	}
	if buckets <= 0 {
		return nil, aggerr.Invalid("buckets", "must be a positive integer, got %d", buckets)
	}
	if granularity != "" && !granularities[granularity] {
		return nil, aggerr.Invalid("granularity", "unknown preferred-number series %q", string(granularity))
	}
	return &BucketAuto{by: v, buckets: buckets, output: output, granularity: granularity}, nil
}

// Compile always emits the output and granularity keys, as null when
// unset; the engine accepts and ignores the nulls and the fixed shape
// keeps compiled pipelines easy to diff.
func (s *BucketAuto) Compile() (bson.D, error) {
	var output any
	if s.output != nil {
		output = resolveMap(s.output)
	}
	var granularity any
	if s.granularity != "" {
		granularity = string(s.granularity)
	}
	body := bson.D{}
	for _, p := range []struct {
		name string
		val  any
	}{
		{"by", expr.Resolve(s.by)},
		{"buckets", s.buckets},
		{"output", output},
		{"granularity", granularity},
	} {
		key, err := wireKey("$bucketAuto", p.name)
		if err != nil {
			return nil, err
		}
		body = append(body, bson.E{Key: key, Value: p.val})
	}
	return bson.D{{Key: "$bucketAuto", Value: body}}, nil
}
