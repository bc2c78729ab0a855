package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "DB_DSN", "TOKEN_TTL", "ENABLE_LOCAL_AUTH",
		"LOG_MODE", "SUBJECTS", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "CORS_ORIGINS_ONLINE"} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.EnableLocalAuth)
	assert.Equal(t, "dev", cfg.LogMode)
	assert.Equal(t, []string{"ANGULAR", "NESTJS", "RXJS"}, cfg.Subjects)
	assert.Equal(t, cfg.CORSOriginsOffline, cfg.CORSOrigins())
}

func TestFromEnv_Online(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODE", "online")
	t.Setenv("SUBJECTS", "RXJS, ANGULAR")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS_ONLINE", "https://a.example, https://b.example")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.False(t, cfg.EnableLocalAuth)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"RXJS", "ANGULAR"}, cfg.Subjects)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODE", "staging")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("MODE", "")
	t.Setenv("TOKEN_TTL", "forever")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TOKEN_TTL")
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9090\nDB_DRIVER=postgres\n"), 0o600))

	// godotenv does not override variables that are already set, even if empty
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))
	require.NoError(t, os.Unsetenv("DB_DRIVER"))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("DB_DRIVER")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
