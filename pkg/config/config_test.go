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
	cfg, err := load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.APIPrefix)
	assert.Equal(t, "sms_api", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoSchema)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadLegacyEnvironmentNames(t *testing.T) {
	t.Setenv("SMS_API_DB_HOST", "db.internal")
	t.Setenv("SMS_API_DB_PASS", "secret")
	t.Setenv("SMS_API_DEBUG", "true")

	cfg, err := load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.True(t, cfg.Debug)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nAPI_PREFIX=/api/v1/\nALLOWED_ORIGINS=https://a.example, https://b.example\nREQUEST_TIMEOUT=bogus\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
