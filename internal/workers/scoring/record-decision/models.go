// internal/workers/scoring/record-decision/models.go
package recorddecision

import "loan-risk-workers/internal/models"

type Input struct {
	DecisionID    string                 `json:"decisionId"`
	Status        string                 `json:"status"`
	RiskScore     float64                `json:"riskScore"`
	ThresholdUsed float64                `json:"thresholdUsed"`
	Reasons       []string               `json:"reasons"`
	ScoredAt      string                 `json:"scoredAt"`
	Application   *models.RawApplication `json:"application,omitempty"`
}

type Output struct {
	Stored     bool   `json:"stored"`
	DecisionID string `json:"decisionId"`
}
