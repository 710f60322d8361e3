package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"agent-portal/internal/config"
	"agent-portal/internal/portal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORTAL_API_URL", "PORTAL_SMS_URL", "PORTAL_HTTP_TIMEOUT", "PORTAL_SESSION_FILE",
		"DATABASE_URL", "JWT_SECRET", "SERVER_PORT", "ALLOWED_ORIGINS",
		"SESSION_TTL", "COOKIE_SECURE", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, portal.DefaultBaseURL, cfg.APIURL)
	assert.Equal(t, portal.DefaultSMSURL, cfg.SMSURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(home, ".agent-portal", "session.yaml"), cfg.SessionFile)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTAL_API_URL", "http://localhost:9000/api")
	t.Setenv("PORTAL_HTTP_TIMEOUT", "5s")
	t.Setenv("PORTAL_SESSION_FILE", "/tmp/s.yaml")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/s.yaml", cfg.SessionFile)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTAL_SESSION_FILE", "/tmp/s.yaml")

	t.Setenv("SESSION_TTL", "soon")
	_, err := config.FromEnv()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "-1m")
	_, err = config.FromEnv()
	assert.ErrorContains(t, err, "must be positive")

	t.Setenv("SESSION_TTL", "")
	t.Setenv("COOKIE_SECURE", "maybe")
	_, err = config.FromEnv()
	assert.ErrorContains(t, err, "COOKIE_SECURE")
}
