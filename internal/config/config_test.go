package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("OTP_TTL", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "IR", cfg.PhoneRegion)
	assert.Equal(t, "direct", cfg.NotifyTransport)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AUTH_RATE_BURST", "3")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.AuthRateBurst)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "soon")
	assert.Equal(t, 10*time.Second, Load().DispatchTimeout)
}
