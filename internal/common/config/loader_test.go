package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    port: 5432
    database: triage
    user: triage
  redis:
    address: localhost:6379
workers:
  diagnose-ticket:
    enabled: true
  send-triage-alert:
    enabled: false
    max_jobs_active: 2
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "maintenance-triage", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10000, cfg.APIs.LLM.Timeout)
	assert.Equal(t, 800, cfg.APIs.LLM.MaxTokens)
	assert.Equal(t, "maintenance-tickets", cfg.Search.TicketsIndex)
	assert.Equal(t, "us-east-1", cfg.Notifications.AWS.Region)
	assert.False(t, cfg.APIs.LLM.Enabled())

	diagnose := GetWorkerConfig(cfg, "diagnose-ticket")
	assert.Equal(t, 5, diagnose.MaxJobsActive)
	assert.Equal(t, 30000, diagnose.Timeout)
	assert.Equal(t, 3, diagnose.MaxRetries)

	alert := GetWorkerConfig(cfg, "send-triage-alert")
	assert.Equal(t, 2, alert.MaxJobsActive)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: db\n    database: triage\n    user: u\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "search without elasticsearch",
			body:    minimalConfig + "search:\n  enabled: true\n",
			wantErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name:    "temperature out of range",
			body:    minimalConfig + "apis:\n  llm:\n    temperature: 3.5\n",
			wantErr: "apis.llm.temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-from-env")
	t.Setenv("TRIAGE_LLM_URL", "http://model.internal/v1/chat/completions")

	body := minimalConfig + "apis:\n  llm:\n    base_url: ${TRIAGE_LLM_URL}\n"
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.APIs.LLM.APIKey)
	assert.Equal(t, "http://model.internal/v1/chat/completions", cfg.APIs.LLM.BaseURL)
	assert.True(t, cfg.APIs.LLM.Enabled())
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"attach-diagnosis": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "attach-diagnosis"))
	assert.True(t, IsWorkerEnabled(cfg, "diagnose-ticket"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Equal(t, "http://u:9200", ElasticsearchConfig{URL: "http://u:9200", Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Empty(t, ElasticsearchConfig{}.GetURL())
}
