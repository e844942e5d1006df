package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	settings, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_HTTP_ADDR, settings.HTTPAddr)
	assert.Equal(t, DEFAULT_ADMIN_PASSWORD, settings.AdminPassword)
	assert.Equal(t, 12*time.Hour, settings.SessionTTL)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), APP_DIR_NAME, DB_NAME), settings.DatabaseURL)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: /tmp/roster.sqlite
admin_password: from-file
secret_key: file-secret
session_ttl: 30m
`), 0o600))

	t.Setenv("LAB_ROSTER_ADMIN_PASSWORD", "from-env")
	t.Setenv("LAB_ROSTER_REMEMBER_FOR", "48h")
	t.Setenv("LAB_ROSTER_SECURE_COOKIES", "true")

	settings, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/roster.sqlite", settings.DatabaseURL)
	assert.Equal(t, "from-env", settings.AdminPassword)
	assert.Equal(t, "file-secret", settings.SecretKey)
	assert.Equal(t, 30*time.Minute, settings.SessionTTL)
	assert.Equal(t, 48*time.Hour, settings.RememberFor)
	assert.True(t, settings.SecureCookies)
	assert.Equal(t, DEFAULT_HTTP_ADDR, settings.HTTPAddr)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LAB_ROSTER_HTTP_ADDR=:18080\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LAB_ROSTER_HTTP_ADDR") })

	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":18080", settings.HTTPAddr)
}

func TestValidateRejectsEmptySecret(t *testing.T) {
	settings := DefaultSettings()
	settings.SecretKey = ""
	settings.SessionTTL = 0

	err := settings.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
	assert.Contains(t, err.Error(), "session_ttl")
}

func TestLoadOrInitializeSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	created, settings, err := LoadOrInitializeSettings(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, INSECURE_SECRET_KEY, settings.SecretKey)
	require.NoError(t, settings.SaveTo(path))

	created, reloaded, err := LoadOrInitializeSettings(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, settings.SecretKey, reloaded.SecretKey)
	assert.Equal(t, settings.RememberFor, reloaded.RememberFor)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestIsPostgresURL(t *testing.T) {
	assert.True(t, IsPostgresURL("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgresURL("postgresql://localhost/db"))
	assert.True(t, IsPostgresURL("host=localhost user=u dbname=db"))
	assert.False(t, IsPostgresURL("/var/lib/lab-roster/data.sqlite"))
	assert.False(t, IsPostgresURL("file::memory:?cache=shared"))
}

func TestProxyTrustIsOptIn(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.False(t, settings.TrustProxy)
	assert.Empty(t, settings.MetricsAddr)

	t.Setenv("LAB_ROSTER_TRUST_PROXY", "true")
	t.Setenv("LAB_ROSTER_METRICS_ADDR", "127.0.0.1:9100")

	settings, err = Load("", nil)
	require.NoError(t, err)
	assert.True(t, settings.TrustProxy)
	assert.Equal(t, "127.0.0.1:9100", settings.MetricsAddr)
}
