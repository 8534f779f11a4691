package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	userpostgres "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/brew-ha-ha/internal/platform/postgres"
)

func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	purged, err := userpostgres.NewSessionStore(db).PurgeExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("purged", purged))
}
