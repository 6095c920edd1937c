// internal/risk/model.go
package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"loan-risk-workers/pkg/bundle"
)

// Predictor scores one feature row and returns class probabilities as
// [P(approved), P(rejected)].
type Predictor interface {
	PredictProba(features []float64) ([2]float64, error)
	ModelType() string
}

// PredictFunc adapts a plain function to the attribution layer, which only
// needs the probability call.
type PredictFunc func(features []float64) ([2]float64, error)

// NewPredictor builds a predictor from the bundle's weights. Linear weights
// win when both model forms are present.
func NewPredictor(b *bundle.Bundle) (Predictor, error) {
	if b.Linear != nil {
		return &logisticModel{
			coefficients: b.Linear.Coefficients,
			intercept:    b.Linear.Intercept,
			modelType:    b.ModelType,
		}, nil
	}
	if len(b.Trees) > 0 {
		return &treeEnsemble{
			trees:     b.Trees,
			baseScore: b.BaseScore,
			modelType: b.ModelType,
		}, nil
	}
	return nil, bundle.ErrModelMissing
}

// logisticModel is a binary logistic regression over the feature row.
type logisticModel struct {
	coefficients []float64
	intercept    float64
	modelType    string
}

func (m *logisticModel) PredictProba(features []float64) ([2]float64, error) {
	if len(features) != len(m.coefficients) {
		return [2]float64{}, fmt.Errorf("got %d features, model expects %d", len(features), len(m.coefficients))
	}
	margin := floats.Dot(m.coefficients, features) + m.intercept
	p1 := sigmoid(margin)
	return [2]float64{1 - p1, p1}, nil
}

func (m *logisticModel) ModelType() string {
	if m.modelType == "" {
		return "logistic_regression"
	}
	return m.modelType
}

// treeEnsemble is a boosted ensemble in flattened CART form. Leaf values sum
// to the class-1 margin.
type treeEnsemble struct {
	trees     []bundle.Tree
	baseScore float64
	modelType string
}

func (m *treeEnsemble) PredictProba(features []float64) ([2]float64, error) {
	margin := m.baseScore
	for i := range m.trees {
		leaf, err := descend(&m.trees[i], features)
		if err != nil {
			return [2]float64{}, fmt.Errorf("tree %d: %w", i, err)
		}
		margin += m.trees[i].Value[leaf]
	}
	p1 := sigmoid(margin)
	return [2]float64{1 - p1, p1}, nil
}

func (m *treeEnsemble) ModelType() string {
	if m.modelType == "" {
		return "gradient_boosting"
	}
	return m.modelType
}

// descend walks one tree from the root and returns the leaf node index.
func descend(t *bundle.Tree, features []float64) (int, error) {
	node := 0
	for steps := 0; steps < len(t.Feature); steps++ {
		if t.Leaf(node) {
			return node, nil
		}
		f := t.Feature[node]
		if f >= len(features) {
			return 0, fmt.Errorf("node %d splits on feature %d beyond row length %d", node, f, len(features))
		}
		if features[f] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
		if node < 0 || node >= len(t.Feature) {
			return 0, fmt.Errorf("node index %d out of range", node)
		}
	}
	return 0, fmt.Errorf("no leaf reached after %d steps", len(t.Feature))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
