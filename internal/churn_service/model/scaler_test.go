package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

func TestStandardScaler_Transform(t *testing.T) {
	s := &StandardScaler{Mean: []float64{10, 0, 5}, Scale: []float64{2, 0, 0.5}}

	out, err := s.Transform(domain.FeatureVector{14, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, domain.FeatureVector{2, 3, -2}, out)
}

func TestStandardScaler_DoesNotMutateInput(t *testing.T) {
	s := &StandardScaler{Mean: []float64{1}, Scale: []float64{1}}
	in := domain.FeatureVector{5}

	_, err := s.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, domain.FeatureVector{5}, in)
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	s := &StandardScaler{Mean: []float64{1, 2}, Scale: []float64{1, 1}}

	_, err := s.Transform(domain.FeatureVector{1})
	var inferenceErr *domain.InferenceError
	require.ErrorAs(t, err, &inferenceErr)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStandardScaler_ValidateRejectsNegativeScale(t *testing.T) {
	s := &StandardScaler{Mean: []float64{0}, Scale: []float64{-1}}
	assert.Error(t, s.validate(1))
	assert.ErrorIs(t, s.validate(2), domain.ErrDimensionMismatch)
}
