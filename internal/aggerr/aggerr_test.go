package aggerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbloq/mongopipe/internal/aggerr"
)

func TestValidationError(t *testing.T) {
	err := aggerr.Invalid("buckets", "must be a positive integer, got %d", 0)

	var verr *aggerr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "buckets", verr.Param)
	assert.Equal(t, "validation: buckets: must be a positive integer, got 0", err.Error())

	anon := &aggerr.ValidationError{Reason: "bad input"}
	assert.Equal(t, "validation: bad input", anon.Error())
}

func TestConfigurationError(t *testing.T) {
	err := &aggerr.ConfigurationError{Reason: "run mode requires an executor"}
	assert.Equal(t, "configuration: run mode requires an executor", err.Error())
}

func TestTypeError(t *testing.T) {
	err := &aggerr.TypeError{Method: "Equals", Operator: "text"}
	assert.Equal(t, `cannot call Equals on "text" operator`, err.Error())
}
