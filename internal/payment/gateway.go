// Package payment is the boundary to the external payment processor.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus mirrors the processor's connected-account state. Only ChargesEnabled
// gates anything; CurrentlyDue is forwarded to the client as-is.
type AccountStatus struct {
	AccountID      string   `json:"accountId"`
	ChargesEnabled bool     `json:"chargesEnabled"`
	PayoutsEnabled bool     `json:"payoutsEnabled"`
	CurrentlyDue   []string `json:"currentlyDue"`
}

func (s AccountStatus) Verified() bool {
	return s.ChargesEnabled
}

type PaymentRequest struct {
	JobID           uuid.UUID
	PaymentMethodID string
	Amount          decimal.Decimal
	// IdempotencyKey makes a resent request return the first attempt's result.
	IdempotencyKey string
}

// ChargeKey names one payment attempt of a job.
func ChargeKey(jobID uuid.UUID, attempt int) string {
	return fmt.Sprintf("charge-%s-%d", jobID, attempt)
}

type PaymentResult struct {
	PaymentID string
	Status    string
}

type PayoutRequest struct {
	EarningID uuid.UUID
	JobID     uuid.UUID
	WorkerID  uuid.UUID
	AccountID string
	Amount    decimal.Decimal
}

// IdempotencyKey is stable per earning so retried payouts never transfer twice.
func (r PayoutRequest) IdempotencyKey() string {
	return "payout-" + r.EarningID.String()
}

type Gateway interface {
	CreateConnectAccount(ctx context.Context, workerID uuid.UUID, email string) (string, error)
	OnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	GetConnectAccountStatus(ctx context.Context, accountID string) (AccountStatus, error)
	ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error)
	PayWorker(ctx context.Context, req PayoutRequest) (string, error)
	// CancelPayment voids an uncaptured payment or refunds a captured one.
	CancelPayment(ctx context.Context, paymentID string) error
}

// MinorUnits converts an amount to cents.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
