// pkg/bundle/schema.go
package bundle

// Bundle is the trained-model artifact loaded once at startup. It carries
// everything the scoring pipeline needs: the feature order the model was
// trained against, the model weights, the decision threshold, and the
// optional scaler and attribution background data.
type Bundle struct {
	ModelType    string       `json:"model_type"`
	FeatureNames []string     `json:"feature_names"`
	Threshold    float64      `json:"threshold"`
	Linear       *LinearModel `json:"linear,omitempty"`
	Trees        []Tree       `json:"trees,omitempty"`
	BaseScore    float64      `json:"base_score,omitempty"`
	Scaler       *Scaler      `json:"scaler,omitempty"`
	Background   [][]float64  `json:"background_data,omitempty"`
}

// LinearModel holds logistic-regression weights in feature order.
type LinearModel struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Tree is one regression tree in flattened CART form. Parallel arrays are
// indexed by node; Feature is -1 for leaf nodes. Value holds the node's
// raw (log-odds) score; summing leaf values across trees plus the bundle's
// BaseScore gives the ensemble margin for class 1.
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Value     []float64 `json:"value"`
}

// Scaler is a pre-fitted standard scaler: x' = (x - Mean) / Scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Leaf reports whether node i of the tree is a leaf.
func (t *Tree) Leaf(i int) bool {
	return t.Feature[i] < 0
}
