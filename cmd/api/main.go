// cmd/api/main.go
//
// @title Gig Marketplace API
// @version 1.0
// @description Jobs, applications, task checklists, payments and worker payouts.
// @BasePath /
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "gig-marketplace-service/docs"
	"gig-marketplace-service/internal/app"
	"gig-marketplace-service/internal/config"
	"gig-marketplace-service/internal/logger"
	"gig-marketplace-service/internal/observability"
	"gig-marketplace-service/internal/service"
	httptransport "gig-marketplace-service/internal/transport/http"
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

	shutdownTracing, err := observability.InitTracing(ctx, "gig-marketplace-api", cfg.Tracing)
	if err != nil {
		zl.Fatal("tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	deps, err := app.Build(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init", zap.Error(err))
	}
	defer deps.Close()

	// DI
	jobs := service.NewJobStore(deps.Store, cfg.Fees)
	apps := service.NewApplicationStore(deps.Store)
	payouts := deps.NewPayoutService(zl.Named("payouts"))
	lifecycle := service.NewLifecycle(service.LifecycleDeps{
		Store:    deps.Store,
		Jobs:     jobs,
		Apps:     apps,
		Payouts:  payouts,
		Gateway:  deps.Gateway,
		Notifier: deps.Notifier,
		Logger:   zl.Named("lifecycle"),
	})
	h := httptransport.NewHandler(httptransport.Services{
		Jobs:      jobs,
		Tasks:     service.NewTaskStore(deps.Store),
		Apps:      apps,
		Lifecycle: lifecycle,
		Reviews:   service.NewReviewService(deps.Store),
		Payouts:   payouts,
	}, zl)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.Routes(h, zl.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	zl.Info("api started",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.Store),
		zap.String("payments", cfg.PaymentsProvider),
		zap.String("fee_flat", cfg.Fees.Flat.String()),
		zap.String("fee_percent", cfg.Fees.Percent.String()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("http server", zap.Error(err))
	}
	zl.Info("api stopped")
}
