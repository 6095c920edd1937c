// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
app:
  name: risk-server
  environment: test

camunda:
  enabled: false

model:
  artifact_path: artifacts/model_bundle.json

database:
  postgres:
    host: localhost
    port: 5432
    database: loan_risk
    user: tester
  redis:
    address: localhost:6379
  elasticsearch:
    addresses:
      - http://localhost:9200

workers:
  score-application:
    enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Server.ReadTimeout)
	assert.Equal(t, "artifacts/model_bundle.json", cfg.Model.ArtifactPath)
	assert.Equal(t, 5000, cfg.Model.ScoreTimeout)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 3600, cfg.Database.Redis.CacheTTL)
	assert.Equal(t, "risk-decisions", cfg.Database.Elasticsearch.DecisionIndex)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)
	assert.Equal(t, "info", cfg.Logging.Level)

	worker := cfg.Workers["score-application"]
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 30000, worker.Timeout)
	assert.Equal(t, 3, worker.MaxRetries)
}

func TestLoadFromFile_ThresholdOverrideOutOfRange(t *testing.T) {
	content := `
camunda:
  enabled: false

model:
  artifact_path: artifacts/model_bundle.json
  threshold_override: 1.5

database:
  postgres:
    host: localhost
    database: loan_risk
    user: tester
  redis:
    address: localhost:6379
  elasticsearch:
    addresses:
      - http://localhost:9200
`
	_, err := LoadFromFile(writeConfig(t, content))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Model.ArtifactPath = "artifacts/model_bundle.json"
		cfg.Database.Postgres.Host = "localhost"
		cfg.Database.Postgres.Database = "loan_risk"
		cfg.Database.Postgres.User = "tester"
		cfg.Database.Redis.Address = "localhost:6379"
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
		return cfg
	}

	assert.NoError(t, validateConfig(base()))

	camundaNoBroker := base()
	camundaNoBroker.Camunda.Enabled = true
	assert.Error(t, validateConfig(camundaNoBroker))

	badThreshold := base()
	badThreshold.Model.ThresholdOverride = 1.5
	assert.Error(t, validateConfig(badThreshold))

	noHost := base()
	noHost.Database.Postgres.Host = ""
	assert.Error(t, validateConfig(noHost))

	noRedis := base()
	noRedis.Database.Redis.Address = ""
	assert.Error(t, validateConfig(noRedis))

	noES := base()
	noES.Database.Elasticsearch.Addresses = nil
	assert.Error(t, validateConfig(noES))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration(5000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestGetWorkerConfig_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"score-application": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	known := GetWorkerConfig(cfg, "score-application")
	assert.Equal(t, 2, known.MaxJobsActive)

	unknown := GetWorkerConfig(cfg, "missing-worker")
	assert.True(t, unknown.Enabled)
	assert.Equal(t, 5, unknown.MaxJobsActive)
	assert.Equal(t, 30000, unknown.Timeout)
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"score-application":    {Enabled: true},
		"send-decision-notice": {Enabled: false},
	}}

	assert.True(t, IsWorkerEnabled(cfg, "score-application"))
	assert.False(t, IsWorkerEnabled(cfg, "send-decision-notice"))
	assert.True(t, IsWorkerEnabled(cfg, "unregistered"))
}
