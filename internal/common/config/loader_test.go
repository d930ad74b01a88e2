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

func TestLoadFromFile_Values(t *testing.T) {
	path := writeConfig(t, `
app:
  name: ifc-api-test
server:
  host: 127.0.0.1
  port: 9090
  max_upload_bytes: 1048576
  cors_origins:
    - https://viewer.example.com
engine:
  parse_workers: 2
  parse_timeout: 5000
uploads:
  rate_per_second: 2.5
  burst: 3
logging:
  level: DEBUG
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ifc-api-test", cfg.App.Name)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadBytes)
	assert.Equal(t, []string{"https://viewer.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2, cfg.Engine.ParseWorkers)
	assert.Equal(t, 5*time.Second, GetDuration(cfg.Engine.ParseTimeout))
	assert.Equal(t, 2.5, cfg.Uploads.RatePerSecond)
	assert.Equal(t, 3, cfg.Uploads.Burst)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: minimal\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(256<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, os.TempDir(), cfg.Storage.ScratchDir)
	assert.Positive(t, cfg.Engine.ParseWorkers)
	assert.Equal(t, 120000, cfg.Engine.ParseTimeout)
	assert.Equal(t, 30*time.Second, GetDuration(cfg.Server.ShutdownTimeout))
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("ENGINE_PARSE_WORKERS", "3")
	t.Setenv("TEST_SCRATCH_DIR", scratch)

	path := writeConfig(t, `
server:
  port: 8000
storage:
  scratch_dir: ${TEST_SCRATCH_DIR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Engine.ParseWorkers)
	assert.Equal(t, scratch, cfg.Storage.ScratchDir)
}

func TestLoadFromFile_UnsetPlaceholderFallsBack(t *testing.T) {
	os.Unsetenv("IFC_TEST_UNSET_DIR")
	path := writeConfig(t, "storage:\n  scratch_dir: ${IFC_TEST_UNSET_DIR}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.TempDir(), cfg.Storage.ScratchDir)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"zero upload limit", "server:\n  max_upload_bytes: 0\n", "server.max_upload_bytes"},
		{"zero parse timeout", "engine:\n  parse_timeout: 0\n", "engine.parse_timeout"},
		{"throttle without burst", "uploads:\n  rate_per_second: 1\n  burst: 0\n", "uploads.burst"},
		{"unknown level", "logging:\n  level: verbose\n", "logging.level"},
		{"relative metrics path", "metrics:\n  path: metrics\n", "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ifc-api", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, 4, cfg.Engine.ParseWorkers)
}
