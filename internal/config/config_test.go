package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "email", cfg.NotifyChannel)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "HTTP_PORT")
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "SESSION_TTL")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:        8080,
			SessionSecret:   testSecret,
			SessionTTL:      time.Hour,
			SignInRateLimit: 1,
			SignInRateBurst: 5,
			NotifyChannel:   "both",
			NotifyWorkers:   2,
			LogLevel:        "info",
			LogFormat:       "json",
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.NotifyChannel = "pigeon"
	assert.ErrorContains(t, cfg.Validate(), "NOTIFY_CHANNEL")

	cfg = valid()
	cfg.SessionSecret = "short"
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")

	cfg = valid()
	cfg.HTTPPort = 70000
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "HTTP_PORT")
	assert.ErrorContains(t, err, "LOG_FORMAT")
}
