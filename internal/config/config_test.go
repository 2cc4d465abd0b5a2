package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SEARCH_RESULT_LIMIT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.ResultLimit)
	assert.Equal(t, 5*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, 0, cfg.Session.MaxHistoryTurns)
	assert.Equal(t, 8*time.Second, cfg.OpenAI.ExtractTimeout())
	assert.False(t, cfg.OpenAI.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEARCH_RESULT_LIMIT", "25")
	t.Setenv("SEARCH_QUERY_TIMEOUT", "2s")
	t.Setenv("SESSION_MAX_HISTORY_TURNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.OpenAI.Enabled)
	assert.Equal(t, 25, cfg.Search.ResultLimit)
	assert.Equal(t, 2*time.Second, cfg.Search.QueryTimeout)
	// invalid integers fall back to the default
	assert.Equal(t, 0, cfg.Session.MaxHistoryTurns)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "result limit above cap", key: "SEARCH_RESULT_LIMIT", value: "500"},
		{name: "unknown gin mode", key: "GIN_MODE", value: "fast"},
		{name: "negative idle ttl", key: "SESSION_IDLE_TTL", value: "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "rentpe", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rentpe sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetPostgreSQLDSN())
}

func TestLoad_ZeroIdleTTLDisablesEviction(t *testing.T) {
	t.Setenv("SESSION_IDLE_TTL", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Session.IdleTTL)
}
