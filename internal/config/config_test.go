package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reckon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.QueueSize)
	assert.Empty(t, cfg.AuditFile)
	assert.False(t, cfg.Debug)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
listen_addr: ":9090"
shutdown_timeout: 30s
queue_size: 64
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 64, cfg.QueueSize)
	assert.True(t, cfg.Debug)

	// Keys absent from the file keep their defaults.
	assert.Empty(t, cfg.SQLiteReport)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
listen_addr: ":9090"
queue_size: 64
`)

	t.Setenv("RECKON_LISTEN_ADDR", ":7070")
	t.Setenv("RECKON_AUDIT_FILE", "journal.jsonl")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 64, cfg.QueueSize)
	assert.Equal(t, "journal.jsonl", cfg.AuditFile)
}

func TestLoad_InvalidEnvValuesCollected(t *testing.T) {
	t.Setenv("RECKON_QUEUE_SIZE", "many")
	t.Setenv("RECKON_DEBUG", "definitely")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECKON_QUEUE_SIZE")
	assert.Contains(t, err.Error(), "RECKON_DEBUG")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "listen_addr: [:::")

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_BadShutdownTimeoutInFile(t *testing.T) {
	path := writeConfigFile(t, "shutdown_timeout: eleven\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid shutdown_timeout")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Config{QueueSize: -1}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen address must not be empty")
	assert.Contains(t, err.Error(), "shutdown timeout must be positive")
	assert.Contains(t, err.Error(), "queue size must not be negative")
}

func TestLoad_NegativeQueueSizeRejected(t *testing.T) {
	t.Setenv("RECKON_QUEUE_SIZE", "-5")

	_, err := Load("")
	assert.ErrorContains(t, err, "queue size must not be negative")
}
