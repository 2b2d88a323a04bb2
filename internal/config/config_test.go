package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load reads the process environment, so these tests cannot run in parallel
// with each other.

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GIN_MODE", "release")
	t.Setenv("AGENT_PROJECT_CONNECTION_STRING", "https://agents.example.test/v1")
	t.Setenv("AGENT_MODEL_DEPLOYMENT_NAME", "gpt-4o")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultConnectionsFile, cfg.ConnectionsFile)
	assert.Equal(t, DefaultPlotsDir, cfg.PlotsDir)
	assert.Equal(t, DefaultAgentName, cfg.AgentName)
	assert.Equal(t, DefaultRunTimeout, cfg.RunTimeout)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AgentInstructions, "agent d'exploration de base de données")
}

func TestLoadYAMLOverrides(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9001"
allowed_origins:
  - "https://app.example.test"
connections_file: /etc/db-agent/connections.json
plots_dir: /var/lib/db-agent/plots
session_capacity: 50
agent_name: explorateur
run_timeout: 30s
poll_interval: 500ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, []string{"https://app.example.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "/etc/db-agent/connections.json", cfg.ConnectionsFile)
	assert.Equal(t, "/var/lib/db-agent/plots", cfg.PlotsDir)
	assert.Equal(t, 50, cfg.SessionCapacity)
	assert.Equal(t, "explorateur", cfg.AgentName)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestLoadMissingEnvIsFatal(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("AGENT_PROJECT_CONNECTION_STRING", "")
	t.Setenv("AGENT_MODEL_DEPLOYMENT_NAME", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENT_PROJECT_CONNECTION_STRING")

	t.Setenv("AGENT_PROJECT_CONNECTION_STRING", "https://agents.example.test/v1")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENT_MODEL_DEPLOYMENT_NAME")
}

func TestPortEnvOverridesAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8088")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8088", cfg.Addr)
}
