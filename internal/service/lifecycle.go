package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/notify"
	"gig-marketplace-service/internal/observability"
	"gig-marketplace-service/internal/payment"
	"gig-marketplace-service/internal/repository"
)

type LifecycleDeps struct {
	Store    repository.Store
	Jobs     *JobStore
	Apps     *ApplicationStore
	Payouts  *PayoutService
	Gateway  payment.Gateway
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Lifecycle owns every job status change that has side effects beyond the job row:
// applications, earnings, payments and notifications.
type Lifecycle struct {
	store    repository.Store
	jobs     *JobStore
	apps     *ApplicationStore
	payouts  *PayoutService
	gateway  payment.Gateway
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewLifecycle(d LifecycleDeps) *Lifecycle {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{
		store:    d.Store,
		jobs:     d.Jobs,
		apps:     d.Apps,
		payouts:  d.Payouts,
		gateway:  d.Gateway,
		notifier: d.Notifier,
		log:      log,
		now:      utcNow,
	}
}

// ApplyToJob requires the worker to hold a verified payout account.
func (l *Lifecycle) ApplyToJob(ctx context.Context, req ApplyRequest) (app *entity.Application, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.ApplyToJob",
		attribute.String("job_id", req.JobID.String()),
		attribute.String("worker_id", req.WorkerID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := req.check(); err != nil {
		return nil, err
	}
	if err := l.payouts.RequireVerified(ctx, req.WorkerID); err != nil {
		return nil, err
	}
	app, err = l.apps.Apply(ctx, req)
	if err != nil {
		return nil, err
	}

	if job, err := l.jobs.Get(ctx, app.JobID); err == nil {
		id := app.ID
		l.notify(ctx, notify.Event{Type: notify.ApplicationReceived, JobID: job.ID, UserID: job.PosterID, ApplicationID: &id, At: app.DateApplied})
	}
	return app, nil
}

func (l *Lifecycle) AcceptApplication(ctx context.Context, id uuid.UUID) (upd *ApplicationUpdate, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.AcceptApplication", attribute.String("application_id", id.String()))
	defer func() { observability.EndSpan(span, err) }()

	upd, err = l.apps.SetStatus(ctx, id, entity.ApplicationAccepted)
	if err != nil {
		return nil, err
	}

	at := upd.Application.UpdatedAt
	accepted := upd.Application.ID
	l.notify(ctx, notify.Event{Type: notify.ApplicationAccepted, JobID: upd.Application.JobID, UserID: upd.Application.WorkerID, ApplicationID: &accepted, At: at})
	for _, s := range upd.Superseded {
		sid := s.ID
		l.notify(ctx, notify.Event{Type: notify.ApplicationRejected, JobID: s.JobID, UserID: s.WorkerID, ApplicationID: &sid, At: at})
	}
	l.log.Info("application accepted",
		zap.String("job_id", upd.Application.JobID.String()),
		zap.String("worker_id", upd.Application.WorkerID.String()),
		zap.Int("superseded", len(upd.Superseded)),
	)
	return upd, nil
}

func (l *Lifecycle) RejectApplication(ctx context.Context, id uuid.UUID) (*ApplicationUpdate, error) {
	upd, err := l.apps.SetStatus(ctx, id, entity.ApplicationRejected)
	if err != nil {
		return nil, err
	}
	aid := upd.Application.ID
	l.notify(ctx, notify.Event{Type: notify.ApplicationRejected, JobID: upd.Application.JobID, UserID: upd.Application.WorkerID, ApplicationID: &aid, At: upd.Application.UpdatedAt})
	return upd, nil
}

func (l *Lifecycle) StartJob(ctx context.Context, jobID uuid.UUID) (*entity.Job, error) {
	return l.jobs.UpdateStatus(ctx, jobID, entity.StatusInProgress)
}

type CompletionResult struct {
	Job     *entity.Job     `json:"job"`
	Earning *entity.Earning `json:"earning,omitempty"`
	// PaymentPending is set when the payout did not go through yet and was queued.
	PaymentPending bool `json:"paymentPending"`
}

// CompleteJob verifies the checklist, completes the job and records the worker's
// earning in one transaction, then tries to pay out. A failed payout never undoes
// the completion.
func (l *Lifecycle) CompleteJob(ctx context.Context, jobID uuid.UUID) (res *CompletionResult, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.CompleteJob", attribute.String("job_id", jobID.String()))
	defer func() { observability.EndSpan(span, err) }()

	var (
		job     *entity.Job
		earning *entity.Earning
		already bool
	)
	err = l.store.InTx(ctx, func(r repository.Repos) error {
		j, err := r.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		job = j
		if j.Status == entity.StatusCompleted {
			already = true
			earning, err = r.Earnings().GetByJob(ctx, jobID)
			if errors.Is(err, entity.ErrNotFound) {
				return nil
			}
			return err
		}
		if j.Status != entity.StatusAssigned && j.Status != entity.StatusInProgress {
			return entity.TransitionError(j.Status, entity.StatusCompleted)
		}

		tasks, err := r.Tasks().ListByJob(ctx, jobID)
		if err != nil {
			return err
		}
		if n := entity.OutstandingRequired(tasks); n > 0 {
			return fmt.Errorf("%w: %d required task(s) outstanding", entity.ErrIncompleteTasks, n)
		}

		now := l.now()
		if j.Status == entity.StatusAssigned {
			if err := setJobStatus(ctx, r, j, entity.StatusInProgress, now); err != nil {
				return err
			}
		}
		worker := *j.WorkerID
		if err := setJobStatus(ctx, r, j, entity.StatusCompleted, now); err != nil {
			return err
		}

		earning = &entity.Earning{
			ID:         uuid.New(),
			JobID:      j.ID,
			WorkerID:   worker,
			Amount:     j.PaymentAmount,
			Status:     entity.EarningPending,
			DateEarned: now,
		}
		// nothing to transfer for a free job
		if earning.Amount.IsZero() {
			earning.Status = entity.EarningPaid
			earning.DatePaid = &now
		}
		return r.Earnings().Create(ctx, earning)
	})
	if err != nil {
		return nil, err
	}

	res = &CompletionResult{Job: job, Earning: earning}
	if already {
		res.PaymentPending = earning != nil && earning.Status == entity.EarningPending
		return res, nil
	}

	l.notify(ctx, notify.Event{Type: notify.JobCompleted, JobID: job.ID, UserID: job.PosterID, At: l.now()})
	l.notify(ctx, notify.Event{Type: notify.JobCompleted, JobID: job.ID, UserID: earning.WorkerID, At: l.now()})

	if earning.Status == entity.EarningPaid {
		return res, nil
	}
	paid, payErr := l.payouts.Pay(ctx, earning.ID)
	if payErr != nil {
		l.log.Error("payout failed, queued for retry",
			zap.String("job_id", job.ID.String()),
			zap.String("earning_id", earning.ID.String()),
			zap.Error(payErr),
		)
		span.SetAttributes(attribute.Bool("payment_pending", true))
		l.payouts.Defer(ctx, earning, PriorityHigh)
		res.PaymentPending = true
		return res, nil
	}
	res.Earning = paid
	return res, nil
}

// CancelJob rejects outstanding applications and tells the assigned worker. A payment
// is refunded when no work has started yet.
func (l *Lifecycle) CancelJob(ctx context.Context, jobID uuid.UUID) (job *entity.Job, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.CancelJob", attribute.String("job_id", jobID.String()))
	defer func() { observability.EndSpan(span, err) }()

	var (
		worker     *uuid.UUID
		refund     bool
		superseded []entity.Application
	)
	err = l.store.InTx(ctx, func(r repository.Repos) error {
		j, err := r.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		from := j.Status
		worker = j.WorkerID
		now := l.now()
		if err := setJobStatus(ctx, r, j, entity.StatusCanceled, now); err != nil {
			return err
		}
		refund = j.PaymentIntentID != nil && (from == entity.StatusOpen || from == entity.StatusAssigned)

		superseded, err = r.Applications().RejectPending(ctx, j.ID, uuid.Nil, now)
		if err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	if worker != nil {
		l.notify(ctx, notify.Event{Type: notify.JobCanceled, JobID: job.ID, UserID: *worker, At: job.UpdatedAt})
	}
	for _, a := range superseded {
		aid := a.ID
		l.notify(ctx, notify.Event{Type: notify.ApplicationRejected, JobID: a.JobID, UserID: a.WorkerID, ApplicationID: &aid, At: job.UpdatedAt})
	}

	if refund {
		if err := l.gateway.CancelPayment(ctx, *job.PaymentIntentID); err != nil {
			l.log.Error("refund on cancel failed",
				zap.String("job_id", job.ID.String()),
				zap.String("payment_id", *job.PaymentIntentID),
				zap.Error(err),
			)
		}
	}
	l.log.Info("job canceled", zap.String("job_id", job.ID.String()), zap.Bool("refunded", refund))
	return job, nil
}

type PaymentRequest struct {
	PaymentMethodID string              `json:"paymentMethodId" validate:"required,max=255"`
	Amount          decimal.NullDecimal `json:"amount"`
}

// ProcessPayment charges the poster for a job awaiting payment. The attempt is
// claimed in one transaction and the result recorded in a second, with the charge
// in between carrying a per-attempt idempotency key. A charge that cannot be
// recorded is voided. A declined payment leaves the job in payment_failed for the
// poster to retry.
func (l *Lifecycle) ProcessPayment(ctx context.Context, jobID uuid.UUID, req PaymentRequest) (job *entity.Job, err error) {
	ctx, span := observability.StartSpan(ctx, "lifecycle.ProcessPayment", attribute.String("job_id", jobID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	var (
		attempt int
		total   decimal.Decimal
	)
	err = l.store.InTx(ctx, func(r repository.Repos) error {
		j, err := r.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if err := awaitsPayment(j); err != nil {
			return err
		}
		total = j.TotalAmount()
		if req.Amount.Valid && !req.Amount.Decimal.Equal(total) {
			return entity.ValidationError("amount %s does not match job total %s", req.Amount.Decimal, total)
		}
		j.PaymentAttempts++
		j.UpdatedAt = l.now()
		attempt = j.PaymentAttempts
		return r.Jobs().Update(ctx, j)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("payment_attempt", attempt))

	res, payErr := l.gateway.ProcessPayment(ctx, payment.PaymentRequest{
		JobID:           jobID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          total,
		IdempotencyKey:  payment.ChargeKey(jobID, attempt),
	})

	var gatewayErr error
	if payErr != nil {
		gatewayErr = entity.GatewayError("process payment", payErr)
	}
	err = l.store.InTx(ctx, func(r repository.Repos) error {
		j, err := r.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if err := awaitsPayment(j); err != nil {
			return err
		}
		if j.PaymentAttempts != attempt {
			return fmt.Errorf("%w: payment attempt %d was superseded by attempt %d", entity.ErrInvalidTransition, attempt, j.PaymentAttempts)
		}

		now := l.now()
		if gatewayErr != nil {
			if j.Status != entity.StatusPaymentFailed {
				if err := setJobStatus(ctx, r, j, entity.StatusPaymentFailed, now); err != nil {
					return err
				}
			}
			job = j
			return nil
		}

		j.PaymentIntentID = &res.PaymentID
		if err := setJobStatus(ctx, r, j, entity.StatusOpen, now); err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		if payErr == nil {
			l.voidCharge(ctx, jobID, res.PaymentID, err)
		}
		return nil, err
	}
	if gatewayErr != nil {
		l.log.Warn("payment failed", zap.String("job_id", jobID.String()), zap.Int("attempt", attempt), zap.Error(gatewayErr))
		return job, gatewayErr
	}
	l.log.Info("payment processed", zap.String("job_id", job.ID.String()), zap.String("payment_id", *job.PaymentIntentID))
	return job, nil
}

func awaitsPayment(j *entity.Job) error {
	if j.Status != entity.StatusPendingPayment && j.Status != entity.StatusPaymentFailed {
		return fmt.Errorf("%w: job is %s and does not await payment", entity.ErrInvalidTransition, j.Status)
	}
	return nil
}

// voidCharge reverses a charge whose result could not be stored. It runs even when
// the request context is already canceled.
func (l *Lifecycle) voidCharge(ctx context.Context, jobID uuid.UUID, paymentID string, cause error) {
	fields := []zap.Field{
		zap.String("job_id", jobID.String()),
		zap.String("payment_id", paymentID),
		zap.NamedError("cause", cause),
	}
	if err := l.gateway.CancelPayment(context.WithoutCancel(ctx), paymentID); err != nil {
		l.log.Error("void unrecorded charge failed, needs manual refund", append(fields, zap.Error(err))...)
		return
	}
	l.log.Warn("voided unrecorded charge", fields...)
}

type Receipt struct {
	JobID         uuid.UUID            `json:"jobId"`
	Title         string               `json:"title"`
	PosterID      uuid.UUID            `json:"posterId"`
	PaymentID     string               `json:"paymentId"`
	PaymentAmount decimal.Decimal      `json:"paymentAmount"`
	ServiceFee    decimal.Decimal      `json:"serviceFee"`
	Total         decimal.Decimal      `json:"total"`
	JobStatus     entity.JobStatus     `json:"jobStatus"`
	PayoutStatus  entity.EarningStatus `json:"payoutStatus,omitempty"`
	DatePaid      *time.Time           `json:"datePaid,omitempty"`
	IssuedAt      time.Time            `json:"issuedAt"`
}

func (l *Lifecycle) GenerateReceipt(ctx context.Context, jobID uuid.UUID) (*Receipt, error) {
	job, err := l.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PaymentIntentID == nil {
		return nil, fmt.Errorf("%w: job %s has not been paid", entity.ErrInvalidTransition, job.ID)
	}
	rc := &Receipt{
		JobID:         job.ID,
		Title:         job.Title,
		PosterID:      job.PosterID,
		PaymentID:     *job.PaymentIntentID,
		PaymentAmount: job.PaymentAmount,
		ServiceFee:    job.ServiceFee,
		Total:         job.TotalAmount(),
		JobStatus:     job.Status,
		IssuedAt:      l.now(),
	}
	e, err := l.store.Earnings().GetByJob(ctx, jobID)
	switch {
	case err == nil:
		rc.PayoutStatus = e.Status
		rc.DatePaid = e.DatePaid
	case !errors.Is(err, entity.ErrNotFound):
		return nil, err
	}
	return rc, nil
}

func (l *Lifecycle) notify(ctx context.Context, ev notify.Event) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, ev); err != nil {
		l.log.Warn("notify", zap.String("event", string(ev.Type)), zap.String("job_id", ev.JobID.String()), zap.Error(err))
	}
}
