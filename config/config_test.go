package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL_SECONDS", "")

	cfg := Load()
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Contains(t, cfg.DatabaseURL, "host=127.0.0.1")
	assert.Equal(t, "HQ", cfg.BootstrapLocation)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db/assets")
	t.Setenv("ACCESS_TOKEN_TTL_SECONDS", "60")
	t.Setenv("REFRESH_TOKEN_TTL_SECONDS", "not-a-number")
	t.Setenv("BOOTSTRAP_ADMIN_USERNAME", "Admin")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()
	assert.Equal(t, "postgres://u:p@db/assets", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "admin", cfg.BootstrapUsername)
	assert.Equal(t, 2, cfg.RedisDB)
}
