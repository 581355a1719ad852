package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/notify"
	"gig-marketplace-service/internal/payment"
	"gig-marketplace-service/internal/repository"
)

// PayoutQueue is the enqueue side of Queue.
type PayoutQueue interface {
	Enqueue(ctx context.Context, id string, priority int) error
}

// PayoutService owns worker payout accounts and the execution of pending earnings.
type PayoutService struct {
	store    repository.Store
	gateway  payment.Gateway
	queue    PayoutQueue // nil: pending earnings wait for the sweeper
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewPayoutService(store repository.Store, gateway payment.Gateway, queue PayoutQueue, notifier notify.Notifier, log *zap.Logger) *PayoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PayoutService{store: store, gateway: gateway, queue: queue, notifier: notifier, log: log, now: utcNow}
}

type CreateAccountRequest struct {
	WorkerID uuid.UUID `json:"workerId"`
	Email    string    `json:"email" validate:"required,email,max=254"`
}

// CreateAccount registers a connected account for the worker; a second call returns
// the existing one.
func (s *PayoutService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*entity.PayoutAccount, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if err := requireID("workerId", req.WorkerID); err != nil {
		return nil, err
	}

	existing, err := s.store.PayoutAccounts().GetByWorker(ctx, req.WorkerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	accountID, err := s.gateway.CreateConnectAccount(ctx, req.WorkerID, req.Email)
	if err != nil {
		return nil, entity.GatewayError("create connect account", err)
	}
	acct := &entity.PayoutAccount{WorkerID: req.WorkerID, AccountID: accountID, CreatedAt: s.now()}
	if err := s.store.PayoutAccounts().Create(ctx, acct); err != nil {
		return nil, err
	}
	s.log.Info("payout account created", zap.String("worker_id", req.WorkerID.String()), zap.String("account_id", accountID))
	return acct, nil
}

func (s *PayoutService) AccountStatus(ctx context.Context, workerID uuid.UUID) (payment.AccountStatus, error) {
	acct, err := s.store.PayoutAccounts().GetByWorker(ctx, workerID)
	if err != nil {
		return payment.AccountStatus{}, err
	}
	st, err := s.gateway.GetConnectAccountStatus(ctx, acct.AccountID)
	if err != nil {
		return payment.AccountStatus{}, entity.GatewayError("get connect account status", err)
	}
	return st, nil
}

// RequireVerified fails with ErrPayoutAccountRequired unless the worker can be paid.
func (s *PayoutService) RequireVerified(ctx context.Context, workerID uuid.UUID) error {
	st, err := s.AccountStatus(ctx, workerID)
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%w: worker %s has no payout account", entity.ErrPayoutAccountRequired, workerID)
	}
	if err != nil {
		return err
	}
	if !st.Verified() {
		return fmt.Errorf("%w: %d requirement(s) currently due", entity.ErrPayoutAccountRequired, len(st.CurrentlyDue))
	}
	return nil
}

type OnboardingLinkRequest struct {
	RefreshURL string `json:"refreshUrl" validate:"required,url"`
	ReturnURL  string `json:"returnUrl" validate:"required,url"`
}

func (s *PayoutService) OnboardingLink(ctx context.Context, workerID uuid.UUID, req OnboardingLinkRequest) (string, error) {
	if err := validateStruct(&req); err != nil {
		return "", err
	}
	acct, err := s.store.PayoutAccounts().GetByWorker(ctx, workerID)
	if err != nil {
		return "", err
	}
	url, err := s.gateway.OnboardingLink(ctx, acct.AccountID, req.RefreshURL, req.ReturnURL)
	if err != nil {
		return "", entity.GatewayError("create onboarding link", err)
	}
	return url, nil
}

func (s *PayoutService) Earnings(ctx context.Context, workerID uuid.UUID) ([]entity.Earning, error) {
	return s.store.Earnings().ListByWorker(ctx, workerID)
}

// Pay executes the payout of one earning. Paid earnings are returned untouched.
func (s *PayoutService) Pay(ctx context.Context, earningID uuid.UUID) (*entity.Earning, error) {
	e, err := s.store.Earnings().GetByID(ctx, earningID)
	if err != nil {
		return nil, err
	}
	if e.Status == entity.EarningPaid {
		return e, nil
	}

	acct, err := s.store.PayoutAccounts().GetByWorker(ctx, e.WorkerID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return e, fmt.Errorf("%w: worker %s has no payout account", entity.ErrPayoutAccountRequired, e.WorkerID)
		}
		return e, err
	}

	transferID, err := s.gateway.PayWorker(ctx, payment.PayoutRequest{
		EarningID: e.ID,
		JobID:     e.JobID,
		WorkerID:  e.WorkerID,
		AccountID: acct.AccountID,
		Amount:    e.Amount,
	})
	if err != nil {
		return e, entity.GatewayError("pay worker", err)
	}

	now := s.now()
	if err := s.store.Earnings().MarkPaid(ctx, e.ID, transferID, now); err != nil {
		// the transfer went out; the idempotency key makes the retry a no-op at the gateway
		return e, fmt.Errorf("mark earning %s paid: %w", e.ID, err)
	}
	e.Status = entity.EarningPaid
	e.TransferID = &transferID
	e.DatePaid = &now

	s.notify(ctx, notify.Event{Type: notify.PayoutSent, JobID: e.JobID, UserID: e.WorkerID, At: now})
	s.log.Info("payout sent",
		zap.String("earning_id", e.ID.String()),
		zap.String("job_id", e.JobID.String()),
		zap.String("transfer_id", transferID),
	)
	return e, nil
}

// Defer hands a failed payout to the retry queue.
func (s *PayoutService) Defer(ctx context.Context, e *entity.Earning, priority int) {
	s.notify(ctx, notify.Event{Type: notify.PayoutPending, JobID: e.JobID, UserID: e.WorkerID, At: s.now()})
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, e.ID.String(), priority); err != nil {
		s.log.Error("enqueue payout", zap.String("earning_id", e.ID.String()), zap.Error(err))
	}
}

// SweepPending enqueues earnings that stayed pending longer than minAge.
func (s *PayoutService) SweepPending(ctx context.Context, minAge time.Duration, limit int) (int, error) {
	if s.queue == nil {
		return 0, errors.New("no payout queue configured")
	}
	pending, err := s.store.Earnings().ListPending(ctx, s.now().Add(-minAge), limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range pending {
		if err := s.queue.Enqueue(ctx, e.ID.String(), PriorityNormal); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *PayoutService) notify(ctx context.Context, ev notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Warn("notify", zap.String("event", string(ev.Type)), zap.String("job_id", ev.JobID.String()), zap.Error(err))
	}
}
