// internal/workers/triage/diagnose-ticket/config.go
package diagnoseticket

import (
	"time"

	"maintenance-triage/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 25 * time.Second,
	}
}

// FromWorkerConfig takes the job timeout from the worker section, keeping the default when unset.
func FromWorkerConfig(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
