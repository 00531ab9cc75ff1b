// internal/workers/triage/attach-diagnosis/config.go
package attachdiagnosis

import (
	"time"

	"maintenance-triage/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// IndexTimeout bounds the search write so a slow cluster cannot eat the job timeout.
	IndexTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		IndexTimeout: 5 * time.Second,
	}
}

func FromWorkerConfig(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
