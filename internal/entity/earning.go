package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EarningStatus string

const (
	EarningPending EarningStatus = "pending"
	EarningPaid    EarningStatus = "paid"
)

// Earning is created by job completion only, never by a user.
type Earning struct {
	ID         uuid.UUID       `json:"id"`
	JobID      uuid.UUID       `json:"jobId"`
	WorkerID   uuid.UUID       `json:"workerId"`
	Amount     decimal.Decimal `json:"amount"`
	Status     EarningStatus   `json:"status"`
	DateEarned time.Time       `json:"dateEarned"`
	TransferID *string         `json:"transferId,omitempty"`
	DatePaid   *time.Time      `json:"datePaid,omitempty"`
}

type PayoutAccount struct {
	WorkerID  uuid.UUID `json:"workerId"`
	AccountID string    `json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
}
