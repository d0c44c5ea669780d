package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"VOYAGE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath(), cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Embedding.APIKey)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/file.db
server:
  addr: ":9000"
log:
  level: debug
  format: json
embedding:
  model: voyage-3
`), 0o600))

	t.Setenv("JOURNAL_SERVER_ADDR", ":9999")
	t.Setenv("JOURNAL_EMBEDDING_API_KEY", "voyage-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/file.db", cfg.Database.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "voyage-3", cfg.Embedding.Model)
	assert.Equal(t, "voyage-key", cfg.Embedding.APIKey)
	assert.Equal(t, "anthropic-key", cfg.Classifier.APIKey)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.path", envKey("JOURNAL_DATABASE_PATH"))
	assert.Equal(t, "classifier.base_url", envKey("JOURNAL_CLASSIFIER_BASE_URL"))
	assert.Equal(t, "debug", envKey("JOURNAL_DEBUG"))
}
