// internal/explain/attribution_test.go
package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/pkg/bundle"
)

func linearBundle() *bundle.Bundle {
	return &bundle.Bundle{
		ModelType:    "logistic_regression",
		FeatureNames: []string{"a", "b"},
		Linear: &bundle.LinearModel{
			Coefficients: []float64{2, -1},
			Intercept:    0,
		},
		Background: [][]float64{{1, 1}},
	}
}

func treeBundle() *bundle.Bundle {
	return &bundle.Bundle{
		ModelType:    "gradient_boosting",
		FeatureNames: []string{"a", "b"},
		Trees: []bundle.Tree{{
			Feature:   []int{0, -1, -1},
			Threshold: []float64{1, 0, 0},
			Left:      []int{1, -1, -1},
			Right:     []int{2, -1, -1},
			Value:     []float64{0.1, -0.5, 0.9},
		}},
		Background: [][]float64{{0, 0}},
	}
}

func TestNewAttributor_PrefersLinearForLogisticModels(t *testing.T) {
	attributor, err := NewAttributor(linearBundle(), nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, "linear", attributor.Name())
}

func TestNewAttributor_PrefersTreePathForEnsembles(t *testing.T) {
	attributor, err := NewAttributor(treeBundle(), nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, "tree-path", attributor.Name())
}

func TestNewAttributor_FallsBackToPerturbation(t *testing.T) {
	b := &bundle.Bundle{
		ModelType:    "mystery",
		FeatureNames: []string{"a"},
		Background:   [][]float64{{0}},
	}
	predict := func(features []float64) ([2]float64, error) {
		return [2]float64{1 - features[0], features[0]}, nil
	}

	attributor, err := NewAttributor(b, predict, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, "perturbation", attributor.Name())
}

func TestNewAttributor_NoBackendAvailable(t *testing.T) {
	b := &bundle.Bundle{ModelType: "mystery", FeatureNames: []string{"a"}}

	_, err := NewAttributor(b, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestLinearAttributor_ExactContributions(t *testing.T) {
	attributor, err := newLinearAttributor(linearBundle())
	require.NoError(t, err)

	rows, err := attributor.Attribute([]float64{3, 0})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// c1 = coef * (x - background mean): 2*(3-1)=4 and -1*(0-1)=1.
	assert.Equal(t, []float64{-4, 4}, rows[0])
	assert.Equal(t, []float64{-1, 1}, rows[1])
}

func TestLinearAttributor_DimensionMismatch(t *testing.T) {
	attributor, err := newLinearAttributor(linearBundle())
	require.NoError(t, err)

	_, err = attributor.Attribute([]float64{1})
	assert.Error(t, err)
}

func TestTreeAttributor_PathContributions(t *testing.T) {
	attributor, err := newTreeAttributor(treeBundle())
	require.NoError(t, err)

	rows, err := attributor.Attribute([]float64{2, 0})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// The row goes right at the root: feature 0 gets 0.9 - 0.1.
	assert.InDelta(t, 0.8, rows[0][0], 1e-12)
	assert.Equal(t, 0.0, rows[0][1])
}

func TestPerturbationAttributor_SignedDifference(t *testing.T) {
	b := &bundle.Bundle{
		FeatureNames: []string{"a", "b"},
		Background:   [][]float64{{0, 0}},
	}
	// p1 = 0.1*a + 0.2*b, so removing each feature drops p1 by its share.
	predict := func(features []float64) ([2]float64, error) {
		p1 := 0.1*features[0] + 0.2*features[1]
		return [2]float64{1 - p1, p1}, nil
	}

	attributor, err := newPerturbationAttributor(b, predict)
	require.NoError(t, err)

	rows, err := attributor.Attribute([]float64{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.1, rows[0][0], 1e-12)
	assert.InDelta(t, 0.4, rows[0][1], 1e-12)
}

func TestPerturbationAttributor_RestoresInput(t *testing.T) {
	b := &bundle.Bundle{
		FeatureNames: []string{"a", "b"},
		Background:   [][]float64{{9, 9}},
	}
	predict := func(features []float64) ([2]float64, error) {
		return [2]float64{0.5, 0.5}, nil
	}

	attributor, err := newPerturbationAttributor(b, predict)
	require.NoError(t, err)

	row := []float64{1, 2}
	_, err = attributor.Attribute(row)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, row)
}
