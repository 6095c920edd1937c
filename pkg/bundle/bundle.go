// pkg/bundle/bundle.go
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultThreshold is used when the artifact does not carry one.
const DefaultThreshold = 0.5

var (
	ErrFeatureNamesMissing = errors.New("bundle has no feature_names")
	ErrModelMissing        = errors.New("bundle has no model weights")
)

// Load reads and validates a model bundle from disk. The bundle is loaded
// exactly once per process and treated as immutable afterwards.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.applyDefaults()
	return &b, nil
}

// Validate checks the invariants a loaded bundle must satisfy before any
// scoring request is served.
func (b *Bundle) Validate() error {
	if len(b.FeatureNames) == 0 {
		return ErrFeatureNamesMissing
	}
	if b.Linear == nil && len(b.Trees) == 0 {
		return ErrModelMissing
	}

	n := len(b.FeatureNames)
	if b.Linear != nil && len(b.Linear.Coefficients) != n {
		return fmt.Errorf("linear model has %d coefficients for %d features", len(b.Linear.Coefficients), n)
	}
	if b.Scaler != nil {
		if len(b.Scaler.Mean) != n || len(b.Scaler.Scale) != n {
			return fmt.Errorf("scaler dimensions (%d/%d) do not match %d features", len(b.Scaler.Mean), len(b.Scaler.Scale), n)
		}
		for i, s := range b.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("scaler has zero scale for feature %s", b.FeatureNames[i])
			}
		}
	}
	for i, row := range b.Background {
		if len(row) != n {
			return fmt.Errorf("background row %d has %d values for %d features", i, len(row), n)
		}
	}
	for i := range b.Trees {
		t := &b.Trees[i]
		nodes := len(t.Feature)
		if len(t.Threshold) != nodes || len(t.Left) != nodes || len(t.Right) != nodes || len(t.Value) != nodes {
			return fmt.Errorf("tree %d has inconsistent node arrays", i)
		}
	}
	return nil
}

func (b *Bundle) applyDefaults() {
	if b.Threshold <= 0 {
		b.Threshold = DefaultThreshold
	}
	// Attribution needs a reference distribution even when none was bundled:
	// a single all-zero row over the schema.
	if len(b.Background) == 0 {
		b.Background = [][]float64{make([]float64, len(b.FeatureNames))}
	}
}

// BackgroundMean returns the per-feature mean of the background rows.
func (b *Bundle) BackgroundMean() []float64 {
	mean := make([]float64, len(b.FeatureNames))
	if len(b.Background) == 0 {
		return mean
	}
	for _, row := range b.Background {
		for i, v := range row {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(b.Background))
	}
	return mean
}
