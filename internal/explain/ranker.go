// internal/explain/ranker.go
package explain

import (
	"fmt"
	"sort"

	"loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/features"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/schema"
)

// TopReasons is the number of explanation sentences returned per decision.
const TopReasons = 5

// FlattenAttributions collapses both attributor output shapes to one
// rejected-class row over the feature columns.
func FlattenAttributions(rows [][]float64, columns int) ([]float64, error) {
	switch {
	case len(rows) == 1 && len(rows[0]) == columns:
		return rows[0], nil
	case len(rows) == columns:
		flat := make([]float64, columns)
		for i, row := range rows {
			if len(row) < 2 {
				return nil, fmt.Errorf("attribution row %d has %d classes", i, len(row))
			}
			flat[i] = row[1]
		}
		return flat, nil
	default:
		return nil, fmt.Errorf("attribution shape %dx? does not fit %d columns", len(rows), columns)
	}
}

// Explain ranks feature attributions for one scored vector and renders the
// top reasons as sentences. Ranking is by signed value, highest first, for
// both decision classes; the decision class is kept on the signature because
// downstream consumers log it alongside the reasons.
func Explain(vec *features.Vector, attributor Attributor, decisionClass int) ([]string, error) {
	rows, err := attributor.Attribute(vec.Values())
	if err != nil {
		return nil, errors.NewExplanationError(err)
	}

	cols := vec.Schema().Columns()
	flat, err := FlattenAttributions(rows, len(cols))
	if err != nil {
		return nil, errors.NewExplanationError(err)
	}

	contributions := make([]models.Contribution, len(cols))
	for i, col := range cols {
		contributions[i] = models.Contribution{Column: col, Value: flat[i]}
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Value > contributions[j].Value
	})

	top := contributions
	if len(top) > TopReasons {
		top = top[:TopReasons]
	}

	reasons := make([]string, 0, len(top))
	for _, c := range top {
		reasons = append(reasons, fmt.Sprintf("%s influenced this decision", schema.FriendlyName(c.Column)))
	}
	return reasons, nil
}
