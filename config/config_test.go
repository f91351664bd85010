package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "host-agent", cfg.AppName)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.WindowSize)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.ID)
	assert.InDelta(t, 0.1, cfg.Model.Temperature, 1e-9)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app_name: travel-host
listen_addr: ":9000"
agent_urls:
  - http://localhost:10000
  - http://localhost:10001
window_size: 6
model:
  provider: anthropic
  id: claude-3-5-sonnet-20241022
  temperature: 0.3
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "travel-host", cfg.AppName)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, []string{"http://localhost:10000", "http://localhost:10001"}, cfg.AgentURLs)
	assert.Equal(t, 6, cfg.WindowSize)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.InDelta(t, 0.3, cfg.Model.Temperature, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "app_name: from-file\n")
	t.Setenv("HOSTAGENT_APP_NAME", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AppName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadAgentRegistry(t *testing.T) {
	path := writeFile(t, "agents.yaml", `
agents:
  - name: product
    url: http://localhost:10000
  - name: travel
    url: http://localhost:10001
`)

	urls, err := LoadAgentRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:10000", "http://localhost:10001"}, urls)
}

func TestLoadAgentRegistry_MissingURL(t *testing.T) {
	path := writeFile(t, "agents.yaml", "agents:\n  - name: broken\n")
	_, err := LoadAgentRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoad_MergesRegistryWithoutDuplicates(t *testing.T) {
	registry := writeFile(t, "agents.yaml", `
agents:
  - name: product
    url: http://localhost:10000
  - name: travel
    url: http://localhost:10001
`)
	path := writeFile(t, "config.yaml", `
agent_urls:
  - http://localhost:10000
agent_registry: `+registry+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:10000", "http://localhost:10001"}, cfg.AgentURLs)
}

func TestValidate(t *testing.T) {
	cfg := &Config{AgentURLs: []string{"http://localhost:10000"}, Model: ModelConfig{Provider: "openai"}}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{Model: ModelConfig{Provider: "openai"}}).Validate())
	assert.Error(t, (&Config{AgentURLs: []string{"x"}, Model: ModelConfig{Provider: "bard"}}).Validate())
	assert.Error(t, (&Config{AgentURLs: []string{"x"}, Model: ModelConfig{Provider: "mock"}, WindowSize: -1}).Validate())
}
