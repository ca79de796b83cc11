package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Gemini_Knowledge_Drive_App", cfg.Drive.FolderName)
	assert.Equal(t, "gemini", cfg.LLM.DefaultProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.Model)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Storage.LegacyLogFormat)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.Google.TokenFile)
	assert.NotEmpty(t, cfg.Cache.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
drive:
  folder_name: My_Knowledge_Folder
llm:
  default_provider: openai
storage:
  legacy_log_format: true
logging:
  level: debug
  format: json
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "My_Knowledge_Folder", cfg.Drive.FolderName)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.True(t, cfg.Storage.LegacyLogFormat)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("GOOGLE_CLIENT_ID", "env-client-id")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-gemini-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "env-client-id", cfg.Google.ClientID)
}

func TestLoadRejectsBadProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  default_provider: carrier-pigeon
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
