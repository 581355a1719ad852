// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gig-marketplace-service/internal/app"
	"gig-marketplace-service/internal/config"
	"gig-marketplace-service/internal/logger"
	"gig-marketplace-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.RedisAddr == "" {
		zl.Fatal("missing env: REDIS_ADDR")
	}
	if cfg.Store != config.StorePostgres {
		zl.Fatal("the payout worker needs STORE=postgres")
	}

	deps, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init", zap.Error(err))
	}
	defer deps.Close()

	zl.Info("worker config",
		zap.Int("workers", cfg.Workers),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("queue_key", cfg.QueueKey),
		zap.String("processing_key", cfg.ProcessingKey),
		zap.String("postgres_dsn", cfg.RedactedDSN()),
	)

	// nothing is in flight yet, so whatever sits in processing was abandoned by a crash
	n, err := deps.Queue.RequeueStale(ctx, cfg.RequeueOnStart)
	if err != nil {
		zl.Error("requeue stale", zap.Error(err))
	} else if n > 0 {
		zl.Info("requeued earnings from processing", zap.Int64("count", n))
	}

	payouts := deps.NewPayoutService(zl.Named("payouts"))
	go worker.Sweep(ctx, payouts, cfg.SweepInterval, cfg.SweepMinAge, zl.Named("sweeper"))

	processor := worker.NewProcessor(payouts, zl.Named("processor"))
	pool := worker.NewPool(deps.Queue, processor, cfg.Workers, zl.Named("pool"))
	pool.Run(ctx)

	zl.Info("worker stopped")
}
