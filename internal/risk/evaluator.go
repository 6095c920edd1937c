// internal/risk/evaluator.go
package risk

import (
	"math"

	"loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/features"
	"loan-risk-workers/pkg/bundle"
)

// Evaluator turns an engineered feature row into a rejection probability and
// a class decision. The threshold comparison is inclusive: a probability
// exactly at the threshold rejects.
type Evaluator struct {
	predictor  Predictor
	normalizer Normalizer
	threshold  float64
}

// NewEvaluator wires a predictor and normalizer from the loaded bundle.
func NewEvaluator(b *bundle.Bundle) (*Evaluator, error) {
	predictor, err := NewPredictor(b)
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		predictor:  predictor,
		normalizer: NewNormalizer(b),
		threshold:  b.Threshold,
	}, nil
}

// NewEvaluatorWith builds an evaluator from explicit parts, for tests and
// threshold overrides.
func NewEvaluatorWith(predictor Predictor, normalizer Normalizer, threshold float64) *Evaluator {
	if normalizer == nil {
		normalizer = noopNormalizer{}
	}
	return &Evaluator{
		predictor:  predictor,
		normalizer: normalizer,
		threshold:  threshold,
	}
}

// Evaluate normalizes the vector in place, scores it, and applies the
// decision threshold. Class 1 is the rejected class. The returned probability
// is P(rejected), always a finite value in [0, 1].
func (e *Evaluator) Evaluate(vec *features.Vector) (float64, int, error) {
	values := vec.Values()
	if err := e.normalizer.TransformInPlace(values); err != nil {
		return 0, 0, errors.NewEvaluationError(err)
	}

	proba, err := e.predictor.PredictProba(values)
	if err != nil {
		return 0, 0, errors.NewEvaluationError(err)
	}

	p1 := proba[1]
	if math.IsNaN(p1) || math.IsInf(p1, 0) {
		return 0, 0, errors.NewEvaluationError(errNonFiniteProbability)
	}

	class := 0
	if p1 >= e.threshold {
		class = 1
	}
	return p1, class, nil
}

// Predict exposes the normalized-row probability call for attribution.
func (e *Evaluator) Predict(features []float64) ([2]float64, error) {
	return e.predictor.PredictProba(features)
}

// Threshold returns the decision threshold in effect.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// ModelType reports the underlying model form.
func (e *Evaluator) ModelType() string {
	return e.predictor.ModelType()
}

var errNonFiniteProbability = errNonFinite{}

type errNonFinite struct{}

func (errNonFinite) Error() string { return "model produced a non-finite probability" }
