// internal/explain/attribution.go
package explain

import (
	"fmt"
	"strings"

	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/risk"
	"loan-risk-workers/pkg/bundle"
)

// Attributor computes per-feature attribution values for one normalized
// feature row. Two output shapes exist, mirroring the two explainer families
// the artifacts come from:
//
//	1 row  x n features          tree-path style, values for the rejected class
//	n rows x 2 classes           linear style, one (approved, rejected) pair per feature
//
// FlattenAttributions collapses both to a single row for ranking.
type Attributor interface {
	Attribute(features []float64) ([][]float64, error)
	Name() string
}

// NewAttributor builds the explanation backend for a loaded bundle. The
// model type hints the first construction attempt; every failure falls
// through to the next candidate, ending with the perturbation fallback that
// only needs the probability call.
func NewAttributor(b *bundle.Bundle, predict risk.PredictFunc, log logger.Logger) (Attributor, error) {
	var candidates []func() (Attributor, error)

	hint := strings.ToLower(b.ModelType)
	linearFirst := strings.Contains(hint, "linear") || strings.Contains(hint, "logistic")

	newLinear := func() (Attributor, error) { return newLinearAttributor(b) }
	newTree := func() (Attributor, error) { return newTreeAttributor(b) }
	if linearFirst {
		candidates = []func() (Attributor, error){newLinear, newTree}
	} else {
		candidates = []func() (Attributor, error){newTree, newLinear}
	}
	candidates = append(candidates, func() (Attributor, error) {
		return newPerturbationAttributor(b, predict)
	})

	var lastErr error
	for _, build := range candidates {
		attributor, err := build()
		if err != nil {
			lastErr = err
			continue
		}
		log.Info("Explanation backend selected", map[string]interface{}{
			"backend":   attributor.Name(),
			"modelType": b.ModelType,
		})
		return attributor, nil
	}
	return nil, fmt.Errorf("no explanation backend available: %w", lastErr)
}

// linearAttributor explains a logistic model exactly: each feature's
// contribution to the class-1 margin is its coefficient times the distance
// from the background mean.
type linearAttributor struct {
	coefficients []float64
	background   []float64
}

func newLinearAttributor(b *bundle.Bundle) (Attributor, error) {
	if b.Linear == nil {
		return nil, fmt.Errorf("bundle has no linear weights")
	}
	return &linearAttributor{
		coefficients: b.Linear.Coefficients,
		background:   b.BackgroundMean(),
	}, nil
}

func (a *linearAttributor) Attribute(features []float64) ([][]float64, error) {
	if len(features) != len(a.coefficients) {
		return nil, fmt.Errorf("got %d features, explainer expects %d", len(features), len(a.coefficients))
	}
	out := make([][]float64, len(features))
	for i := range features {
		c1 := a.coefficients[i] * (features[i] - a.background[i])
		out[i] = []float64{-c1, c1}
	}
	return out, nil
}

func (a *linearAttributor) Name() string { return "linear" }

// treeAttributor explains an ensemble by path attribution: walking each tree
// from root to leaf, the change in node value at every split is credited to
// the split feature.
type treeAttributor struct {
	trees []bundle.Tree
}

func newTreeAttributor(b *bundle.Bundle) (Attributor, error) {
	if len(b.Trees) == 0 {
		return nil, fmt.Errorf("bundle has no trees")
	}
	return &treeAttributor{trees: b.Trees}, nil
}

func (a *treeAttributor) Attribute(features []float64) ([][]float64, error) {
	contributions := make([]float64, len(features))
	for i := range a.trees {
		if err := pathAttribute(&a.trees[i], features, contributions); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return [][]float64{contributions}, nil
}

func (a *treeAttributor) Name() string { return "tree-path" }

func pathAttribute(t *bundle.Tree, features []float64, contributions []float64) error {
	node := 0
	for steps := 0; steps < len(t.Feature); steps++ {
		if t.Leaf(node) {
			return nil
		}
		f := t.Feature[node]
		if f >= len(features) {
			return fmt.Errorf("node %d splits on feature %d beyond row length %d", node, f, len(features))
		}
		next := t.Right[node]
		if features[f] <= t.Threshold[node] {
			next = t.Left[node]
		}
		if next < 0 || next >= len(t.Feature) {
			return fmt.Errorf("node index %d out of range", next)
		}
		contributions[f] += t.Value[next] - t.Value[node]
		node = next
	}
	return fmt.Errorf("no leaf reached after %d steps", len(t.Feature))
}

// perturbationAttributor is the model-agnostic fallback. Each feature's
// attribution is the drop in rejection probability when that feature is
// replaced by its background mean.
type perturbationAttributor struct {
	predict    risk.PredictFunc
	background []float64
}

func newPerturbationAttributor(b *bundle.Bundle, predict risk.PredictFunc) (Attributor, error) {
	if predict == nil {
		return nil, fmt.Errorf("no probability function for perturbation")
	}
	return &perturbationAttributor{
		predict:    predict,
		background: b.BackgroundMean(),
	}, nil
}

func (a *perturbationAttributor) Attribute(features []float64) ([][]float64, error) {
	if len(features) != len(a.background) {
		return nil, fmt.Errorf("got %d features, background has %d", len(features), len(a.background))
	}

	base, err := a.predict(features)
	if err != nil {
		return nil, err
	}

	contributions := make([]float64, len(features))
	perturbed := make([]float64, len(features))
	copy(perturbed, features)

	for i := range features {
		perturbed[i] = a.background[i]
		proba, err := a.predict(perturbed)
		if err != nil {
			return nil, err
		}
		contributions[i] = base[1] - proba[1]
		perturbed[i] = features[i]
	}
	return [][]float64{contributions}, nil
}

func (a *perturbationAttributor) Name() string { return "perturbation" }
