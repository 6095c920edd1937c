// internal/workers/scoring/send-decision-notice/models.go
package senddecisionnotice

const (
	StatusSent     = "SENT"
	StatusFailed   = "FAILED"
	StatusDisabled = "DISABLED"
)

type Input struct {
	DecisionID     string   `json:"decisionId"`
	Status         string   `json:"status"`
	RiskScore      float64  `json:"riskScore"`
	Reasons        []string `json:"reasons"`
	ApplicantEmail string   `json:"applicantEmail"`
	ApplicantPhone string   `json:"applicantPhone,omitempty"`
}

type Output struct {
	NoticeID string `json:"noticeId"`
	Status   string `json:"noticeStatus"`
	SentAt   string `json:"sentAt"`
}
