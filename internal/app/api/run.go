package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	brewserver "github.com/Apurer/brew-ha-ha/go"

	catalogmemory "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/brew-ha-ha/internal/domains/catalog/application"
	catalogports "github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"

	storeredis "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/cache/redis"
	storekafka "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/events/kafka"
	storememory "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/memory"
	storeobs "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/observability"
	storepostgres "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/persistence/postgres"
	storeapp "github.com/Apurer/brew-ha-ha/internal/domains/store/application"
	storeports "github.com/Apurer/brew-ha-ha/internal/domains/store/ports"

	usermemory "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/persistence/postgres"
	"github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/tokens"
	userapp "github.com/Apurer/brew-ha-ha/internal/domains/users/application"
	userports "github.com/Apurer/brew-ha-ha/internal/domains/users/ports"

	"github.com/Apurer/brew-ha-ha/internal/platform/fixtures"
	"github.com/Apurer/brew-ha-ha/internal/platform/httpmiddleware"
	"github.com/Apurer/brew-ha-ha/internal/platform/migrations"
	platformobservability "github.com/Apurer/brew-ha-ha/internal/platform/observability"
	platformpostgres "github.com/Apurer/brew-ha-ha/internal/platform/postgres"
)

const serviceName = "brew-api"

// Run boots the Brew Ha Ha HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithLogFile(cfg.LogFile),
		platformobservability.WithEnvironment(cfg.Environment),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer closeDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	repos := buildRepositories(db, logger)

	products, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		return err
	}
	catalogService := catalogobs.New(
		catalogapp.NewService(repos.catalog),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	seeded, err := catalogService.SeedIfEmpty(ctx, products)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if seeded > 0 {
		logger.Info("product catalog seeded", slog.Int("products", seeded))
	}

	idempotency, closeIdempotency := buildIdempotencyStore(ctx, cfg, db, logger)
	defer closeIdempotency()
	publisher, closePublisher := buildEventPublisher(cfg, logger)
	defer closePublisher()
	storeService := storeobs.New(
		storeapp.NewService(repos.orders,
			storeapp.WithIdempotencyStore(idempotency),
			storeapp.WithEventPublisher(publisher),
			storeapp.WithLogger(logger),
		),
		storeobs.WithLogger(logger),
		storeobs.WithTracer(instruments.Tracer("internal.store.application")),
		storeobs.WithMeter(instruments.Meter("internal.store.application")),
	)

	issuer, err := tokens.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to configure tokens: %w", err)
	}
	userService := userobs.New(
		userapp.NewService(repos.users, repos.sessions, issuer),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	handlers := brewserver.ApiHandleFunctions{
		ProductAPI: brewserver.NewProductAPI(catalogService),
		OrderAPI:   brewserver.NewOrderAPI(storeService),
		UserAPI:    brewserver.NewUserAPI(userService),
		Auth:       brewserver.BearerAuth(userService),
	}
	router := newEngine(logger)
	brewserver.NewRouterWithGinEngine(router, handlers)

	return serve(ctx, ":"+cfg.Port, router, logger)
}

// newEngine installs the cross-cutting middleware. Gin copies the middleware
// chain into each route at registration, so this runs before any route is added.
func newEngine(logger *slog.Logger) *gin.Engine {
	metrics := httpmiddleware.NewMetrics(nil)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		metrics.Middleware(),
		httpmiddleware.Logging(logger),
	)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	return router
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Brew API listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Brew API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down Brew API")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

type repositories struct {
	catalog  catalogports.Repository
	orders   storeports.Repository
	users    userports.Repository
	sessions userports.SessionStore
}

func buildRepositories(db *gorm.DB, logger *slog.Logger) repositories {
	if db == nil {
		catalog := catalogmemory.NewRepository()
		return repositories{
			catalog:  catalog,
			orders:   storememory.NewRepository(catalog),
			users:    usermemory.NewRepository(),
			sessions: usermemory.NewSessionStore(),
		}
	}
	logger.Info("repositories configured with postgres")
	return repositories{
		catalog:  catalogpostgres.NewRepository(db),
		orders:   storepostgres.NewRepository(db),
		users:    userpostgres.NewRepository(db),
		sessions: userpostgres.NewSessionStore(db),
	}
}

// buildIdempotencyStore keeps keys no longer than the orders they point at.
// In-memory orders get in-memory keys; postgres orders prefer redis, then postgres.
func buildIdempotencyStore(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (storeports.IdempotencyStore, func()) {
	if db == nil {
		if cfg.RedisAddr != "" {
			logger.Warn("REDIS_ADDR ignored, orders are kept in memory")
		}
		return storememory.NewIdempotencyStore(), func() {}
	}
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("failed to reach redis, falling back for idempotency keys", slog.String("error", err.Error()))
			_ = rdb.Close()
		} else {
			logger.Info("idempotency keys stored in redis", slog.Duration("ttl", cfg.IdempotencyTTL))
			return storeredis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL), func() { _ = rdb.Close() }
		}
	}
	return storepostgres.NewIdempotencyStore(db), func() {}
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (storeports.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, order events are not published")
		return storeports.NoopEventPublisher, func() {}
	}
	publisher := storekafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrdersTopic))
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	}
}
