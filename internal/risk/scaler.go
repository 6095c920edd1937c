// internal/risk/scaler.go
package risk

import (
	"fmt"

	"loan-risk-workers/pkg/bundle"
)

// Normalizer rescales a feature row in place before it reaches the model.
type Normalizer interface {
	TransformInPlace(features []float64) error
}

// standardScaler applies the pre-fitted x' = (x - mean) / scale transform.
// Fitting happens offline with the model; only the learned parameters travel
// in the artifact.
type standardScaler struct {
	mean  []float64
	scale []float64
}

// NewNormalizer returns the bundle's scaler, or a no-op when the artifact
// carries none.
func NewNormalizer(b *bundle.Bundle) Normalizer {
	if b.Scaler == nil {
		return noopNormalizer{}
	}
	return &standardScaler{
		mean:  b.Scaler.Mean,
		scale: b.Scaler.Scale,
	}
}

func (s *standardScaler) TransformInPlace(features []float64) error {
	if len(features) != len(s.mean) {
		return fmt.Errorf("got %d features, scaler expects %d", len(features), len(s.mean))
	}
	for i := range features {
		features[i] = (features[i] - s.mean[i]) / s.scale[i]
	}
	return nil
}

type noopNormalizer struct{}

func (noopNormalizer) TransformInPlace([]float64) error { return nil }
