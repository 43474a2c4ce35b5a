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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	path := writeConfig(t, "app:\n  name: booking\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "booking", cfg.App.Name)
	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "cookie", cfg.Session.Store)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL())
	assert.Equal(t, time.Duration(0), cfg.Backend.TimeoutDuration())
	assert.Empty(t, cfg.BackendURL())
	assert.False(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.CORS.Origins)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_BackendURLPrecedence(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	path := writeConfig(t, "backend:\n  timeout: 5\n")

	t.Run("public only", func(t *testing.T) {
		t.Setenv("PUBLIC_API_URL", "https://public.example.com/api/")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://public.example.com/api", cfg.BackendURL())
		assert.Equal(t, 5*time.Second, cfg.Backend.TimeoutDuration())
	})

	t.Run("private overrides public", func(t *testing.T) {
		t.Setenv("PUBLIC_API_URL", "https://public.example.com/api")
		t.Setenv("BACKEND_API_URL", "http://backend.internal:3000")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://backend.internal:3000", cfg.BackendURL())
	})
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("APP_ENV", "development")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("cookie store without secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "session:\n  store: cookie\n"))
		assert.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := Load(writeConfig(t, "session:\n  store: disk\n"))
		assert.Error(t, err)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := Load(writeConfig(t, "app:\n  env: staging\nsession:\n  store: memory\n"))
		assert.Error(t, err)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Modules(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	path := writeConfig(t, "modules:\n  dashboard:\n    enabled: false\n  chairs:\n    enabled: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Module("dashboard").Enabled)
	assert.True(t, cfg.Module("chairs").Enabled)
	assert.True(t, cfg.Module("users").Enabled)
	assert.Equal(t, []string{"auth", "chairs"}, cfg.EnabledModules([]string{"auth", "dashboard", "chairs"}))
}
