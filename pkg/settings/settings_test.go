package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", s.Chat.Model)
	assert.Equal(t, 15, s.Store.TimeoutSeconds)
	assert.Equal(t, "info", s.Log.Level)
	assert.Empty(t, s.Store.APIKey)
}

func TestLoadMergesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "converso.yaml")
	content := `
store:
  base_url: https://example.supabase.co
  api_key: store-key
chat:
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", s.Store.BaseURL)
	assert.Equal(t, "store-key", s.Store.APIKey)
	assert.Equal(t, "gpt-4o-mini", s.Chat.Model)
	// untouched keys keep their defaults
	assert.Equal(t, 15, s.Store.TimeoutSeconds)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "converso.yaml")
	content := `
chat:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CONVERSO_CHAT_API_KEY", "env-key")
	t.Setenv("CONVERSO_LOG_LEVEL", "debug")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", s.Chat.APIKey)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := &Settings{}
	require.Error(t, s.Validate())

	s.Store.BaseURL = "https://example.supabase.co"
	require.Error(t, s.Validate())

	s.Store.APIKey = "store-key"
	require.Error(t, s.Validate())

	s.Chat.Model = "gemini-2.0-flash"
	require.Error(t, s.Validate())

	s.Chat.APIKey = "chat-key"
	require.NoError(t, s.Validate())
}
