package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gig-marketplace-service/internal/service"
)

type Pool struct {
	queue      service.Queue
	processor  *Processor
	workers    int
	claimDelay time.Duration
	// errDelay is the pause after a failed claim, so a broker outage is not hammered.
	errDelay time.Duration
	log      *zap.Logger
}

func NewPool(queue service.Queue, processor *Processor, workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
		errDelay:   time.Second,
		log:        log,
	}
}

// Run claims earning ids until ctx is done and waits for in-flight payouts.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info("worker pool started", zap.Int("workers", p.workers))

	idCh := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for id := range idCh {
				if err := p.processor.Process(ctx, id); err != nil {
					p.log.Warn("process earning", zap.Int("worker", n), zap.String("earning_id", id), zap.Error(err))
				}

				// always ack: a failed payout stays pending in the database and the sweeper
				// enqueues it again
				if ackErr := p.queue.Ack(context.WithoutCancel(ctx), id); ackErr != nil {
					p.log.Error("ack earning", zap.Int("worker", n), zap.String("earning_id", id), zap.Error(ackErr))
				}
			}
		}(i + 1)
	}

	defer func() {
		close(idCh)
		wg.Wait()
		p.log.Info("worker pool stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		id, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.log.Warn("claim earning", zap.Error(err), zap.Duration("retry_in", p.errDelay))
			select {
			case <-time.After(p.errDelay):
			case <-ctx.Done():
				return
			}
			continue
		}
		select {
		case idCh <- id:
		case <-ctx.Done():
			return
		}
	}
}

// Sweep periodically enqueues earnings that stayed pending for minAge.
func Sweep(ctx context.Context, payouts *service.PayoutService, every, minAge time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := payouts.SweepPending(ctx, minAge, 500)
			if err != nil {
				log.Error("sweep pending earnings", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("swept pending earnings", zap.Int("enqueued", n))
			}
		}
	}
}
