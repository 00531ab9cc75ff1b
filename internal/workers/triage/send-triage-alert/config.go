// internal/workers/triage/send-triage-alert/config.go
package sendtriagealert

import (
	"time"

	"maintenance-triage/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	DefaultEmail string
	DefaultPhone string
	SenderID     string
	SubjectLabel string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		SubjectLabel: "Maintenance Triage",
		Timeout:      15 * time.Second,
	}
}

// FromConfig reads the notifications section and the worker timeout.
func FromConfig(cfg *config.Config) *Config {
	out := LoadConfig()
	n := cfg.Notifications
	out.EmailEnabled = n.Email.Enabled
	out.SMSEnabled = n.SMS.Enabled
	out.FromEmail = n.Email.FromEmail
	out.DefaultEmail = n.Email.DefaultTo
	out.DefaultPhone = n.SMS.DefaultTo
	out.SenderID = n.SMS.SenderID
	if n.Email.SubjectLabel != "" {
		out.SubjectLabel = n.Email.SubjectLabel
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		out.Timeout = config.GetDuration(w.Timeout)
	}
	return out
}
