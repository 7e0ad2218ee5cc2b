package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"goldwork/internal/adapter/memstore"
	"goldwork/internal/adapter/repo"
	"goldwork/internal/app"
	"goldwork/internal/domain"
	"goldwork/internal/http/handlers"
	httpapi "goldwork/internal/http/httpapi"
	"goldwork/internal/infra"
	"goldwork/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := app.LoadRules(cfg.DetectionRulesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load detection rules")
	}

	var (
		store domain.Store
		ping  func(context.Context) error
	)
	switch cfg.StoreDriver {
	case infra.StoreDriverMemory:
		logger.Warn().Msg("using in-memory store; state is lost on restart")
		store = memstore.New()
	default:
		pool, err := infra.NewDBPool(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		store = repo.NewStore(infra.NewSQLRunner(pool, logger))
		ping = pool.Ping
	}

	svc := app.New(store, app.Options{
		Logger:         logger,
		PenaltyPercent: cfg.CancelPenaltyPct,
		Rules:          rules,
	})

	h := handlers.NewApp(svc, logger)
	h.Ping = ping

	router := httpapi.NewRouter(h, httpapi.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Limiter:        newLimiter(cfg, logger),
		Logger:         logger,
	})

	if err := infra.NewHTTPServer(cfg, router, logger).Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

// newLimiter shares the rate limit window through Redis when REDIS_URL is set.
func newLimiter(cfg *infra.Config, logger infra.Logger) middleware.Limiter {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid REDIS_URL, falling back to in-process rate limit")
		return middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	}
	return middleware.NewRedisLimiter(redis.NewClient(opts), cfg.RateLimitPerMin, time.Minute, "goldwork:rl")
}
