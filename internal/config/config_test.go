package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POSTGRES_DSN", "DATABASE_URL", "REDIS_ADDR", "ADMIN_PASSWORD", "SERVER_HOST",
		"GEMINI_API_KEY", "BLOB_BACKEND", "BLOB_GCS_CREDENTIALS", "SITE_ORIGIN",
		"BLOB_MEMORY_BASE_URL", "AUTH_SESSION_TTL_MINUTES", "GEMINI_TEMPERATURE", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gmm-site", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "memory", cfg.Blob.Backend)
	assert.Equal(t, "/blobs", cfg.Blob.MemoryBaseURL)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, 15*time.Second, cfg.Telemetry.PollInterval())
	assert.InDelta(t, 0.7, cfg.Chat.Temperature, 1e-9)

	assert.ElementsMatch(t, []string{
		"record store (POSTGRES_DSN)",
		"shared cache (REDIS_ADDR)",
		"admin login (ADMIN_PASSWORD)",
		"server telemetry (SERVER_HOST)",
		"chat assistant (GEMINI_API_KEY)",
	}, cfg.Disabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/gmm")
	t.Setenv("SITE_ORIGIN", "https://gmm.example/")
	t.Setenv("BLOB_BACKEND", "GCS")
	t.Setenv("BLOB_MEMORY_BASE_URL", "http://localhost:8080/blobs/")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/gmm", cfg.Postgres.DSN)
	assert.Equal(t, "https://gmm.example", cfg.Site.Origin)
	assert.Equal(t, "gcs", cfg.Blob.Backend)
	assert.Equal(t, "http://localhost:8080/blobs", cfg.Blob.MemoryBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL())
	assert.Contains(t, cfg.Disabled(), "blob store credentials (BLOB_GCS_CREDENTIALS)")
	assert.NotContains(t, cfg.Disabled(), "record store (POSTGRES_DSN)")
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_TEMPERATURE", "warm")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GEMINI_TEMPERATURE", "")
	t.Setenv("REDIS_DB", "zero")
	_, err = Load()
	assert.Error(t, err)
}
