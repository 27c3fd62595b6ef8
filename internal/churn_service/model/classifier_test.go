package model

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

func testEnsemble(t *testing.T) Classifier {
	t.Helper()
	a, err := LoadArtifact(filepath.Join("testdata", "model_v1.json"))
	require.NoError(t, err)
	return a.Classifier
}

func TestTreeEnsemble_Predict(t *testing.T) {
	clf := testEnsemble(t)

	tests := []struct {
		name        string
		mutate      func(*domain.CustomerInput)
		label       domain.Label
		probability float64
	}{
		{"default customer", func(*domain.CustomerInput) {}, domain.LabelRetained, 0.125},
		{"many service calls", func(in *domain.CustomerInput) { in.CustomerServiceCalls = 5 }, domain.LabelRetained, 0.475},
		{"service calls and intl plan", func(in *domain.CustomerInput) {
			in.CustomerServiceCalls = 5
			in.InternationalPlan = 1
		}, domain.LabelChurned, 0.725},
		{"expensive days", func(in *domain.CustomerInput) { in.TotalDayCharge = 55 }, domain.LabelRetained, 0.425},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := domain.DefaultCustomerInput()
			tt.mutate(&in)
			vec, err := domain.BuildFeatureVector(in)
			require.NoError(t, err)

			label, err := clf.Predict(vec)
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)

			p, err := clf.PredictProba(vec)
			require.NoError(t, err)
			assert.InDelta(t, tt.probability, p, 1e-9)
		})
	}
}

func TestTreeEnsemble_Deterministic(t *testing.T) {
	clf := testEnsemble(t)
	vec, err := domain.BuildFeatureVector(domain.DefaultCustomerInput())
	require.NoError(t, err)

	first, err := clf.Predict(vec)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := clf.Predict(vec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTreeEnsemble_AllZeroVector(t *testing.T) {
	clf := testEnsemble(t)
	vec, err := domain.BuildFeatureVector(domain.CustomerInput{})
	require.NoError(t, err)

	label, err := clf.Predict(vec)
	require.NoError(t, err)
	assert.Contains(t, []domain.Label{domain.LabelRetained, domain.LabelChurned}, label)
}

func TestTreeEnsemble_DimensionMismatch(t *testing.T) {
	clf := testEnsemble(t)

	_, err := clf.Predict(make(domain.FeatureVector, 20))
	var inferenceErr *domain.InferenceError
	require.ErrorAs(t, err, &inferenceErr)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = clf.PredictProba(make(domain.FeatureVector, 22))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestTreeEnsemble_TieGoesToFirstClass(t *testing.T) {
	leaf := TreeNode{Feature: -1, Left: -1, Right: -1, Value: []float64{5, 5}}
	clf, err := NewTreeEnsemble([]int{0, 1}, []Tree{{Nodes: []TreeNode{leaf}}}, domain.FeatureCount)
	require.NoError(t, err)

	label, err := clf.Predict(make(domain.FeatureVector, domain.FeatureCount))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelRetained, label)
}

func TestNewTreeEnsemble_Invalid(t *testing.T) {
	leaf := TreeNode{Feature: -1, Left: -1, Right: -1, Value: []float64{1, 0}}

	_, err := NewTreeEnsemble([]int{0}, []Tree{{Nodes: []TreeNode{leaf}}}, domain.FeatureCount)
	assert.Error(t, err)

	_, err = NewTreeEnsemble([]int{0, 2}, []Tree{{Nodes: []TreeNode{leaf}}}, domain.FeatureCount)
	assert.Error(t, err)

	_, err = NewTreeEnsemble([]int{0, 1}, nil, domain.FeatureCount)
	assert.Error(t, err)

	badLeaf := TreeNode{Feature: -1, Left: -1, Right: -1, Value: []float64{1}}
	_, err = NewTreeEnsemble([]int{0, 1}, []Tree{{Nodes: []TreeNode{badLeaf}}}, domain.FeatureCount)
	assert.Error(t, err)
}

func TestNewTreeEnsemble_RejectsMalformedModels(t *testing.T) {
	tests := []struct {
		name    string
		classes []int
		value   []float64
		substr  string
	}{
		{name: "duplicate churn class", classes: []int{1, 1}, value: []float64{0.9, 0.1}, substr: "duplicate class label 1"},
		{name: "duplicate retained class", classes: []int{0, 0}, value: []float64{0.9, 0.1}, substr: "duplicate class label 0"},
		{name: "negative leaf weight", classes: []int{0, 1}, value: []float64{-3, 4}, substr: "must be finite and non-negative"},
		{name: "NaN leaf weight", classes: []int{0, 1}, value: []float64{math.NaN(), 1}, substr: "must be finite and non-negative"},
		{name: "infinite leaf weight", classes: []int{0, 1}, value: []float64{math.Inf(1), 1}, substr: "must be finite and non-negative"},
		{name: "empty leaf", classes: []int{0, 1}, value: []float64{0, 0}, substr: "sum to zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := TreeNode{Feature: 15, Threshold: 3.5, Left: 1, Right: 2}
			good := TreeNode{Feature: -1, Left: -1, Right: -1, Value: []float64{1, 1}}
			leaf := TreeNode{Feature: -1, Left: -1, Right: -1, Value: tt.value}

			clf, err := NewTreeEnsemble(tt.classes, []Tree{{Nodes: []TreeNode{root, good, leaf}}}, domain.FeatureCount)
			assert.Nil(t, clf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestLogistic_MatchesSigmoidOfLinearScore(t *testing.T) {
	coefficients := make([]float64, domain.FeatureCount)
	coefficients[0] = 0.5
	coefficients[15] = -1
	clf, err := NewLogistic(coefficients, 0.25, domain.FeatureCount)
	require.NoError(t, err)

	v := make(domain.FeatureVector, domain.FeatureCount)
	v[0] = 4
	v[15] = 1

	p, err := clf.PredictProba(v)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.25)), p, 1e-12)
}

func TestLogistic(t *testing.T) {
	_, err := NewLogistic([]float64{1, 2}, 0, domain.FeatureCount)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	clf, err := NewLogistic(make([]float64, domain.FeatureCount), 0, domain.FeatureCount)
	require.NoError(t, err)

	p, err := clf.PredictProba(make(domain.FeatureVector, domain.FeatureCount))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	label, err := clf.Predict(make(domain.FeatureVector, domain.FeatureCount))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelChurned, label)

	_, err = clf.Predict(make(domain.FeatureVector, 3))
	var inferenceErr *domain.InferenceError
	assert.ErrorAs(t, err, &inferenceErr)
}
