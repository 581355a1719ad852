// Package app wires configuration into stores, gateways and services for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gig-marketplace-service/internal/config"
	"gig-marketplace-service/internal/notify"
	"gig-marketplace-service/internal/payment"
	"gig-marketplace-service/internal/repository"
	"gig-marketplace-service/internal/repository/memory"
	"gig-marketplace-service/internal/repository/postgresql"
	"gig-marketplace-service/internal/service"
)

// Deps is everything the api and the worker share. Close releases connections.
type Deps struct {
	Store    repository.Store
	Gateway  payment.Gateway
	Redis    redis.UniversalClient // nil without REDIS_ADDR
	Queue    service.Queue         // nil without REDIS_ADDR
	Notifier notify.Notifier

	closers []func()
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*Deps, error) {
	d := &Deps{}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pg: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		if err := postgresql.Migrate(ctx, pool); err != nil {
			d.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		d.Store = postgresql.NewStore(pool)
		log.Info("postgres connected", zap.String("dsn", cfg.RedactedDSN()))
	default:
		d.Store = memory.NewStore()
		log.Warn("using in-memory store, data is lost on restart")
	}

	switch cfg.PaymentsProvider {
	case config.PaymentsStripe:
		d.Gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)
	default:
		d.Gateway = payment.NewFake()
		log.Warn("using fake payment gateway")
	}

	if cfg.RedisAddr == "" {
		d.Notifier = notify.NewLogNotifier(log.Named("events"))
		log.Warn("REDIS_ADDR not set, payouts are not queued and events are only logged")
		return d, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		d.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	d.Redis = rdb
	d.Queue = service.NewRedisPayoutQueue(rdb, service.NewQueueKeys(cfg.QueueKey, cfg.ProcessingKey))
	d.Notifier = notify.NewRedisNotifier(rdb, cfg.EventsChannel)
	return d, nil
}

// NewPayoutService returns a payout service that enqueues through d.Queue when present.
func (d *Deps) NewPayoutService(log *zap.Logger) *service.PayoutService {
	var q service.PayoutQueue
	if d.Queue != nil {
		q = d.Queue
	}
	return service.NewPayoutService(d.Store, d.Gateway, q, d.Notifier, log)
}
