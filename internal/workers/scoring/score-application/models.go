// internal/workers/scoring/score-application/models.go
package scoreapplication

import "loan-risk-workers/internal/models"

type Input struct {
	Application models.RawApplication `json:"application"`
}

type Output struct {
	DecisionID    string   `json:"decisionId"`
	Status        string   `json:"status"`
	RiskScore     float64  `json:"riskScore"`
	ThresholdUsed float64  `json:"thresholdUsed"`
	Reasons       []string `json:"reasons"`
	ScoredAt      string   `json:"scoredAt"`
}
