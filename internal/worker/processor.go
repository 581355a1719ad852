package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gig-marketplace-service/internal/entity"
)

// Payer executes the payout of a single earning.
type Payer interface {
	Pay(ctx context.Context, earningID uuid.UUID) (*entity.Earning, error)
}

type Processor struct {
	payer Payer
	log   *zap.Logger
}

func NewProcessor(payer Payer, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{payer: payer, log: log}
}

// Process pays one queued earning. Unknown ids are dropped; gateway failures are
// returned and the earning stays pending for the next sweep.
func (p *Processor) Process(ctx context.Context, earningID string) error {
	start := time.Now()

	id, err := uuid.Parse(earningID)
	if err != nil {
		p.log.Warn("drop malformed earning id", zap.String("earning_id", earningID), zap.Error(err))
		return nil
	}

	e, err := p.payer.Pay(ctx, id)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		p.log.Warn("drop unknown earning", zap.String("earning_id", earningID))
		return nil
	case err != nil:
		p.log.Error("payout failed",
			zap.String("earning_id", earningID),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		return err
	}

	p.log.Info("payout processed",
		zap.String("earning_id", earningID),
		zap.String("job_id", e.JobID.String()),
		zap.String("status", string(e.Status)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
