// internal/workers/scoring/send-decision-notice/config.go
package senddecisionnotice

import (
	"time"

	"loan-risk-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	AWSRegion    string
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig(cfg *config.Config) *Config {
	worker := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:      config.GetDuration(worker.Timeout),
		AWSRegion:    cfg.Notifications.AWS.Region,
		FromEmail:    cfg.Notifications.Email.FromEmail,
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
	}
}
