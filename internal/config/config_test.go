package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DB_DSN", "ENV", "HTTP_ADDR", "JWT_SECRET",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "HISTORY_CACHE_TTL",
	"TELEGRAM_TOKEN", "TELEGRAM_ADMIN_CHAT_ID", "RECONCILE_INTERVAL",
}

// clearEnv очищает переменные, восстановление делает t.Setenv
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, developmentJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.InsecureJWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.HistoryCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval)
	assert.True(t, cfg.UseMemoryStore())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "postgres://localhost/hostel")
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("HISTORY_CACHE_TTL", "30s")
	t.Setenv("RECONCILE_INTERVAL", "0")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.False(t, cfg.UseMemoryStore())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.InsecureJWTSecret)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, int64(-100123), cfg.TelegramAdminChatID)
	assert.Equal(t, 30*time.Second, cfg.HistoryCacheTTL)
	assert.Zero(t, cfg.ReconcileInterval)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, key := range configKeys {
		// godotenv не перезаписывает уже заданные переменные
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9090\nREDIS_ADDR=localhost:6379\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"ENV": "production"}},
		{"bad redis db", map[string]string{"REDIS_DB": "two"}},
		{"bad chat id", map[string]string{"TELEGRAM_ADMIN_CHAT_ID": "chat"}},
		{"bad ttl", map[string]string{"HISTORY_CACHE_TTL": "soon"}},
		{"zero ttl", map[string]string{"HISTORY_CACHE_TTL": "0s"}},
		{"negative interval", map[string]string{"RECONCILE_INTERVAL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}
