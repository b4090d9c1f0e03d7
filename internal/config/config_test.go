package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/driveschool")
	t.Setenv("ENV", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("MIGRATIONS_PATH", "")
	t.Setenv("LOCK_TIMEOUT_MS", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, 3*time.Second, cfg.LockTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/driveschool")
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MIGRATIONS_PATH", "db/migrations")
	t.Setenv("LOCK_TIMEOUT_MS", "500")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "db/migrations", cfg.MigrationsPath)
	assert.Equal(t, 500*time.Millisecond, cfg.LockTimeout)
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("LOCK_TIMEOUT_MS", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidLockTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "postgres://localhost:5432/driveschool")
			t.Setenv("LOCK_TIMEOUT_MS", tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}
