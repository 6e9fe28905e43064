package failure_test

import (
	"errors"
	"fmt"
	"testing"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKind(t *testing.T) {
	err := failure.Wrap("weather", "Paris", fmt.Errorf("nominatim returned status code: 503: %w", failure.ErrGeocoding))

	assert.True(t, errors.Is(err, failure.ErrGeocoding))
	assert.False(t, errors.Is(err, failure.ErrUpload))
	assert.Equal(t, "weather [Paris]: nominatim returned status code: 503: geocoding failed", err.Error())

	var stageErr *failure.StageError
	assert.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "weather", stageErr.Stage)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, failure.Wrap("hotels", "", nil))
}

func TestStageErrorWithoutSubject(t *testing.T) {
	err := failure.Wrap("load", "", failure.ErrConnectivity)
	assert.Equal(t, "load: relational store unreachable", err.Error())
}
