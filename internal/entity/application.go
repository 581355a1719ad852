package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s == ApplicationAccepted || s == ApplicationRejected
}

type Application struct {
	ID               uuid.UUID           `json:"id"`
	JobID            uuid.UUID           `json:"jobId"`
	WorkerID         uuid.UUID           `json:"workerId"`
	Status           ApplicationStatus   `json:"status"`
	Message          string              `json:"message"`
	HourlyRate       decimal.NullDecimal `json:"hourlyRate"`
	ExpectedDuration *string             `json:"expectedDuration,omitempty"`
	DateApplied      time.Time           `json:"dateApplied"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Active applications block another application by the same worker on the same job.
func (a Application) Active() bool {
	return a.Status != ApplicationRejected
}
