// internal/models/application.go
package models

import "time"

// RawApplication is one loan application as submitted by the caller. Field
// names mirror the wire format the trained model was built against, so the
// JSON tags are part of the scoring contract and must not be renamed.
type RawApplication struct {
	LoanAmount         float64 `json:"loan_amnt"`
	Term               int     `json:"term"`
	InterestRate       float64 `json:"int_rate"`
	SubGrade           string  `json:"sub_grade"`
	EmploymentLength   float64 `json:"emp_length"`
	AnnualIncome       float64 `json:"annual_inc"`
	DTI                float64 `json:"dti"`
	VerificationStatus string  `json:"verification_status"`
	PublicRecords      float64 `json:"pub_rec"`
	PublicBankruptcies float64 `json:"pub_rec_bankruptcies"`
	RevolvingBalance   float64 `json:"revol_bal"`
	RevolvingUtil      float64 `json:"revol_util"`
	FicoRange          float64 `json:"fico_range"`
	EarliestCreditLine string  `json:"earliest_cr_line"` // YYYY-MM-DD
	TotalAccounts      float64 `json:"total_acc"`
	MortgageAccounts   float64 `json:"mort_acc"`
	OpenAccounts       float64 `json:"open_acc"`
	Purpose            string  `json:"purpose"`
	ApplicationType    string  `json:"application_type"`
	HomeOwnership      string  `json:"home_ownership"`
}

// EarliestCreditDate parses the earliest-credit-line field.
func (a *RawApplication) EarliestCreditDate() (time.Time, error) {
	return time.Parse("2006-01-02", a.EarliestCreditLine)
}

// Decision status labels. Class 1 of the model is the rejected class.
const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// RiskDecision is the terminal artifact of one scoring request. Immutable
// once constructed.
type RiskDecision struct {
	DecisionID    string   `json:"decision_id"`
	Status        string   `json:"status"`
	RiskScore     float64  `json:"risk_score"` // 0-100, rounded to 2 decimals
	ThresholdUsed float64  `json:"threshold_used"`
	Reasons       []string `json:"reasons"` // at most 5 entries
	ScoredAt      string   `json:"scored_at"`
}

// Rejected reports whether the decision landed on the rejected class.
func (d *RiskDecision) Rejected() bool {
	return d.Status == StatusRejected
}

// Contribution pairs a feature column with its signed attribution value
// toward the rejected class for a single request.
type Contribution struct {
	Column string  `json:"column"`
	Value  float64 `json:"value"`
}
