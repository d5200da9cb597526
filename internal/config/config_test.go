package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1000, cfg.Engine.CorrelationCapacity)
	assert.Equal(t, 10000, cfg.Engine.AnalyticsCapacity)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.NATS.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
engine:
  correlation_capacity: 50
  analytics_capacity: 500
nats:
  enabled: true
  url: nats://bus:4222
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Engine.CorrelationCapacity)
	assert.Equal(t, 500, cfg.Engine.AnalyticsCapacity)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "nats://bus:4222", cfg.NATS.URL)
}

func TestLoadRejectsBadCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  correlation_capacity: -5
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestDatabaseConnString(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, User: "hawkline", Password: "secret",
		Database: "hawkline", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://hawkline:secret@db:5432/hawkline?sslmode=disable", d.ConnString())
}
