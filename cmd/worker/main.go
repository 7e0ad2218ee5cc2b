package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"goldwork/internal/adapter/repo"
	"goldwork/internal/app"
	"goldwork/internal/domain"
	"goldwork/internal/infra"
)

// sweepActor is the admin identity the worker acts as when it runs detection.
const sweepActor = "system:anomaly-sweep"

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	if cfg.StoreDriver != infra.StoreDriverPostgres {
		logger.Fatal().Str("driver", cfg.StoreDriver).Msg("worker: the detection sweep needs the postgres store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := app.LoadRules(cfg.DetectionRulesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load detection rules")
	}

	pool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	svc := app.New(repo.NewStore(infra.NewSQLRunner(pool, logger)), app.Options{
		Logger:         logger,
		PenaltyPercent: cfg.CancelPenaltyPct,
		Rules:          rules,
	})

	logger.Info().Dur("interval", cfg.DetectionInterval).Msg("worker: started")
	runSweeps(ctx, svc.Anomalies, cfg.DetectionInterval, logger)
	logger.Info().Msg("worker: stopped")
}

func runSweeps(ctx context.Context, anomalies *app.Anomalies, interval time.Duration, logger infra.Logger) {
	admin := domain.Admin(sweepActor)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sum, err := anomalies.Detect(ctx, admin)
		if err != nil {
			logger.Error().Err(err).Msg("worker: detection sweep failed")
		} else {
			logger.Info().
				Int("jobs_scanned", sum.JobsScanned).
				Int("created", sum.Created).
				Int("existing", sum.Existing).
				Msg("worker: detection sweep done")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
