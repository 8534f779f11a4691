package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Config carries environment-driven settings for the API process.
type Config struct {
	Port             string
	PostgresDSN      string
	RedisAddr        string
	RedisPassword    string
	IdempotencyTTL   time.Duration
	KafkaBrokers     []string
	KafkaOrdersTopic string
	JWTSecret        string
	JWTIssuer        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	FixturesPath     string
	LogFile          string
	Environment      string
}

// LoadConfig overlays an optional .env file onto the environment, applies
// defaults, and validates basic constraints. Variables already set win over .env.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:             envDefault("PORT", "8080"),
		PostgresDSN:      strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:        strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrdersTopic: envDefault("KAFKA_ORDERS_TOPIC", "brew.orders.placed"),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:        envDefault("JWT_ISSUER", "brew-ha-ha"),
		FixturesPath:     strings.TrimSpace(os.Getenv("FIXTURES_PATH")),
		LogFile:          strings.TrimSpace(os.Getenv("LOG_FILE")),
		Environment:      envDefault("ENVIRONMENT", "local"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	idempotencyMinutes, err := positiveInt("IDEMPOTENCY_TTL_MINUTES", 1440)
	if err != nil {
		return Config{}, err
	}
	accessMinutes, err := positiveInt("ACCESS_TOKEN_TTL_MINUTES", 5)
	if err != nil {
		return Config{}, err
	}
	refreshHours, err := positiveInt("REFRESH_TOKEN_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = time.Duration(idempotencyMinutes) * time.Minute
	cfg.AccessTokenTTL = time.Duration(accessMinutes) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(refreshHours) * time.Hour
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
