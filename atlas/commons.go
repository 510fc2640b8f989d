// Package atlas implements the Atlas Search stage family: the $search and
// $searchMeta stages, the search operator tree they wrap, and the facet
// collector. Search operators follow the same construction-time
// validation contract as the rest of the builder; the compound operator
// additionally supports in-place clause mutation with immediate
// re-validation.
package atlas

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

// FuzzyOptions tunes fuzzy matching for the operators that support it.
// The zero value disables nothing; use DefaultFuzzy for the engine
// defaults.
type FuzzyOptions struct {
	MaxEdits      int
	MaxExpansions int
	PrefixLength  int
}

// DefaultFuzzy returns the engine's default fuzzy matching parameters.
func DefaultFuzzy() *FuzzyOptions {
	return &FuzzyOptions{MaxEdits: 2, MaxExpansions: 50}
}

// Statement compiles the options; all keys are always present.
func (f *FuzzyOptions) Statement() bson.D {
	return bson.D{
		{Key: "maxEdits", Value: f.MaxEdits},
		{Key: "maxExpansions", Value: f.MaxExpansions},
		{Key: "prefixLength", Value: f.PrefixLength},
	}
}

// CountOptions requests a result count alongside search results.
type CountOptions struct {
	Type      string // "lowerBound" or "total"
	Threshold int
}

// NewCount builds count options; countType defaults to "lowerBound" and
// threshold to 1000 when zero.
func NewCount(countType string, threshold int) (*CountOptions, error) {
	if countType == "" {
		countType = "lowerBound"
	}
	if countType != "lowerBound" && countType != "total" {
		return nil, aggerr.Invalid("type", `must be "lowerBound" or "total", got %q`, countType)
	}
	if threshold == 0 {
		threshold = 1000
	}
	return &CountOptions{Type: countType, Threshold: threshold}, nil
}

func (c *CountOptions) Statement() bson.D {
	return bson.D{
		{Key: "type", Value: c.Type},
		{Key: "threshold", Value: c.Threshold},
	}
}

// Highlight requests highlighted passages for a searched path.
type Highlight struct {
	Path              string
	MaxCharsToExamine int
	MaxNumPassages    int
}

// NewHighlight builds highlight options for path, with the engine
// defaults for the passage limits when zero.
func NewHighlight(path string, maxCharsToExamine, maxNumPassages int) (*Highlight, error) {
	if path == "" {
		return nil, aggerr.Invalid("path", "highlight path must not be empty")
	}
	if maxCharsToExamine == 0 {
		maxCharsToExamine = 500000
	}
	if maxNumPassages == 0 {
		maxNumPassages = 5
	}
	return &Highlight{
		Path:              path,
		MaxCharsToExamine: maxCharsToExamine,
		MaxNumPassages:    maxNumPassages,
	}, nil
}

func (h *Highlight) Statement() bson.D {
	return bson.D{
		{Key: "path", Value: h.Path},
		{Key: "maxCharsToExamine", Value: h.MaxCharsToExamine},
		{Key: "maxNumPassages", Value: h.MaxNumPassages},
	}
}

// searchPath validates an operator path parameter: a non-empty string or
// a non-empty list of non-empty strings.
func searchPath(param string, path any) (any, error) {
	switch t := path.(type) {
	case string:
		if t == "" {
			return nil, aggerr.Invalid(param, "path must not be empty")
		}
		return t, nil
	case []string:
		if len(t) == 0 {
			return nil, aggerr.Invalid(param, "path list must not be empty")
		}
		for _, p := range t {
			if p == "" {
				return nil, aggerr.Invalid(param, "path list must not contain empty paths")
			}
		}
		return t, nil
	default:
		return nil, aggerr.Invalid(param, "path must be a string or a list of strings")
	}
}

// searchQuery validates an operator query parameter the same way.
func searchQuery(param string, query any) (any, error) {
	switch t := query.(type) {
	case string:
		if t == "" {
			return nil, aggerr.Invalid(param, "query must not be empty")
		}
		return t, nil
	case []string:
		if len(t) == 0 {
			return nil, aggerr.Invalid(param, "query list must not be empty")
		}
		return t, nil
	default:
		return nil, aggerr.Invalid(param, "query must be a string or a list of strings")
	}
}
