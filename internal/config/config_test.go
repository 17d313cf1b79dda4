package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_SSLMODE", "API_BASE_URL", "API_LOGIN_PATH",
		"API_TIMEOUT", "AUTH_ADDR", "JWT_SECRET", "JWT_TTL", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, "/api/users/login", cfg.APILoginPath)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example/")
	t.Setenv("API_LOGIN_PATH", "/api/auth/login")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("API_TIMEOUT", "nonsense")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg := FromEnv()

	assert.Equal(t, "https://shop.example", cfg.APIBaseURL)
	assert.Equal(t, "/api/auth/login", cfg.APILoginPath)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, "123:abc", cfg.BotToken)
}
