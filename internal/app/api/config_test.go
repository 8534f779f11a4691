package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	for _, key := range []string{"PORT", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_ORDERS_TOPIC",
		"IDEMPOTENCY_TTL_MINUTES", "ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_HOURS", "JWT_ISSUER"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "brew.orders.placed", cfg.KafkaOrdersTopic)
	assert.Equal(t, "brew-ha-ha", cfg.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_TTL_HOURS", "48")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("IDEMPOTENCY_TTL_MINUTES", "-1")
	_, err = LoadConfig()
	assert.EqualError(t, err, "IDEMPOTENCY_TTL_MINUTES must be a positive integer")
}
