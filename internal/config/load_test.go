package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeAuto, s.Mode)
	assert.Equal(t, EnvDevelopment, s.Environment)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, "file", s.Session.Store)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.yaml")
	content := `
api_mode: real
api_url: https://file.example.com
env: production
timeout: 5s
session:
  store: bolt
  path: /tmp/cms.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("CMS_API_URL", "https://env.example.com")
	t.Setenv("CMS_MAX_RETRIES", "1")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeReal, s.Mode)
	assert.Equal(t, "https://env.example.com", s.APIURL)
	assert.Equal(t, EnvProduction, s.Environment)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, 1, s.MaxRetries)
	assert.Equal(t, "bolt", s.Session.Store)
	assert.Equal(t, "/tmp/cms.db", s.Session.FilePath)
}

func TestLoad_NestedFieldsReadOnlyPrefixedVariables(t *testing.T) {
	t.Setenv("STORE", "bolt")
	t.Setenv("FILE_PATH", "/etc/elsewhere")
	t.Setenv("LEVEL", "debug")
	t.Setenv("FORMAT", "json")

	s, err := Load("")
	require.NoError(t, err)
	defaults := defaultSettings()
	assert.Equal(t, defaults.Session, s.Session)
	assert.Equal(t, defaults.Logging, s.Logging)

	t.Setenv("CMS_SESSION_STORE", "memory")
	t.Setenv("CMS_SESSION_FILE_PATH", "/tmp/session.json")
	t.Setenv("CMS_LOG_LEVEL", "warn")
	t.Setenv("CMS_LOG_FORMAT", "json")

	s, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Session.Store)
	assert.Equal(t, "/tmp/session.json", s.Session.FilePath)
	assert.Equal(t, "warn", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, s.Mode)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("CMS_API_MODE", "staging")

	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestNewManagerFromSettings(t *testing.T) {
	s := defaultSettings()
	s.Mode = ModeReal
	s.APIURL = "https://cms.example.com"
	s.Timeout = 2 * time.Second
	s.MaxRetries = 0

	cfg := NewManagerFromSettings(s, nil).GetConfig()
	assert.Equal(t, "https://cms.example.com", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxRetries)
}
