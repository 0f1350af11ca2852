package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
backend:
  type: clickhouse
universe:
  - ticker: AMZN
    sector: Consumer Discretionary
  - ticker: AAPL
    sector: Technology
clickhouse:
  host: localhost
  port: 9000
  database: market
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, []string{"AMZN", "AAPL"}, c.Tickers())
	assert.Equal(t, "market", c.ClickHouse.Database)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
backend:
  type: postgres
universe:
  - ticker: AMZN
    sector: Consumer Discretionary
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.type")
}

func TestLoadRejectsDuplicateTickers(t *testing.T) {
	body := `
environment: test
backend:
  type: clickhouse
universe:
  - ticker: AMZN
    sector: Consumer Discretionary
  - ticker: AMZN
    sector: Technology
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "secret")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "secret", c.Provider.APIKey)
	assert.Equal(t, "kafka", c.Backend.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}
