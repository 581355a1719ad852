package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var ErrDeclined = errors.New("payment declined")

// Fake is an in-process Gateway for local runs (PAYMENTS_PROVIDER=fake) and tests.
// New accounts start verified unless UnverifiedAccounts is set.
type Fake struct {
	mu sync.Mutex

	FailPayments       bool
	FailPayouts        bool
	UnverifiedAccounts bool

	accounts  map[string]AccountStatus
	payments  map[string]string // payment id -> status
	charges   map[string]string // idempotency key -> payment id
	transfers map[string]string // idempotency key -> transfer id
	seq       int
}

func NewFake() *Fake {
	return &Fake{
		accounts:  make(map[string]AccountStatus),
		payments:  make(map[string]string),
		charges:   make(map[string]string),
		transfers: make(map[string]string),
	}
}

func (f *Fake) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%06d", prefix, f.seq)
}

func (f *Fake) CreateConnectAccount(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("acct")
	st := AccountStatus{AccountID: id, ChargesEnabled: true, PayoutsEnabled: true, CurrentlyDue: []string{}}
	if f.UnverifiedAccounts {
		st.ChargesEnabled = false
		st.PayoutsEnabled = false
		st.CurrentlyDue = []string{"external_account", "individual.verification.document"}
	}
	f.accounts[id] = st
	return id, nil
}

// SetAccountStatus overrides what GetConnectAccountStatus reports for an account.
func (f *Fake) SetAccountStatus(st AccountStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[st.AccountID] = st
}

func (f *Fake) OnboardingLink(_ context.Context, accountID, _, _ string) (string, error) {
	return "https://connect.example.local/setup/" + accountID, nil
}

func (f *Fake) GetConnectAccountStatus(_ context.Context, accountID string) (AccountStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.accounts[accountID]
	if !ok {
		return AccountStatus{}, fmt.Errorf("no such account: %s", accountID)
	}
	return st, nil
}

func (f *Fake) ProcessPayment(_ context.Context, req PaymentRequest) (PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPayments {
		return PaymentResult{}, ErrDeclined
	}
	if req.PaymentMethodID == "" || MinorUnits(req.Amount) <= 0 {
		return PaymentResult{}, errors.New("invalid payment request")
	}
	if id, ok := f.charges[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return PaymentResult{PaymentID: id, Status: f.payments[id]}, nil
	}
	id := f.next("pi")
	f.payments[id] = "succeeded"
	if req.IdempotencyKey != "" {
		f.charges[req.IdempotencyKey] = id
	}
	return PaymentResult{PaymentID: id, Status: "succeeded"}, nil
}

func (f *Fake) PayWorker(_ context.Context, req PayoutRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPayouts {
		return "", errors.New("transfer failed")
	}
	if req.AccountID == "" {
		return "", errors.New("worker has no connected account")
	}
	if id, ok := f.transfers[req.IdempotencyKey()]; ok {
		return id, nil
	}
	id := f.next("tr")
	f.transfers[req.IdempotencyKey()] = id
	return id, nil
}

func (f *Fake) CancelPayment(_ context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[paymentID]; !ok {
		return fmt.Errorf("no such payment: %s", paymentID)
	}
	f.payments[paymentID] = "refunded"
	return nil
}

// PaymentStatus reports the recorded status of a payment, "" when unknown.
func (f *Fake) PaymentStatus(paymentID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[paymentID]
}

// Charges returns how many payments were created, refunded ones included.
func (f *Fake) Charges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

// Transfers returns how many distinct payouts were executed.
func (f *Fake) Transfers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}
