package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 1, cfg.DBMaxOpenConns)
	assert.Equal(t, "0 8 * * *", cfg.FollowUpCron)
	assert.True(t, cfg.EmailTestMode)
	assert.Equal(t, 60, cfg.WriteRateLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EMAIL_TEST_MODE", "false")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("FOLLOW_UP_LOOKAHEAD_DAYS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.EmailTestMode)
	assert.Equal(t, 3, cfg.FollowUpLookaheadDays)
}

func TestValidate(t *testing.T) {
	t.Run("Rejects zero connections", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: 0}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Production email requires API key", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: 1, Environment: "production", EmailTestMode: false}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RESEND_API_KEY")
	})

	t.Run("Rejects negative rate limit", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: 1, WriteRateLimit: -1}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Development without key is fine", func(t *testing.T) {
		cfg := &Config{DBMaxOpenConns: 1, Environment: "development"}
		assert.NoError(t, cfg.Validate())
	})
}
