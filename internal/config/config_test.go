package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("PAYMENT_TIMEOUT", "")
	t.Setenv("DB_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, "usd", cfg.DefaultCurrency)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("PAYMENT_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/gym")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, 7, cfg.RateLimitBurst)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, "https://hooks.example.com/gym", cfg.WebhookURL)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_BURST", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}
