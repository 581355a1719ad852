package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	StatusPendingPayment JobStatus = "pending_payment"
	StatusPaymentFailed  JobStatus = "payment_failed"
	StatusOpen           JobStatus = "open"
	StatusAssigned       JobStatus = "assigned"
	StatusInProgress     JobStatus = "in_progress"
	StatusCompleted      JobStatus = "completed"
	StatusCanceled       JobStatus = "canceled"
)

// jobTransitions is the complete job state machine. Anything not listed is rejected.
var jobTransitions = map[JobStatus][]JobStatus{
	StatusPendingPayment: {StatusOpen, StatusPaymentFailed},
	StatusPaymentFailed:  {StatusOpen, StatusCanceled},
	StatusOpen:           {StatusAssigned, StatusCanceled},
	StatusAssigned:       {StatusInProgress, StatusCanceled},
	StatusInProgress:     {StatusCompleted, StatusCanceled},
}

func (s JobStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaymentFailed, StatusOpen, StatusAssigned,
		StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, to := range jobTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// HoldsWorker reports whether a job in this status carries a worker.
func (s JobStatus) HoldsWorker() bool {
	return s == StatusAssigned || s == StatusInProgress || s == StatusCompleted
}

type PaymentType string

const (
	PaymentHourly PaymentType = "hourly"
	PaymentFixed  PaymentType = "fixed"
)

type Job struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	PaymentType       PaymentType     `json:"paymentType"`
	PaymentAmount     decimal.Decimal `json:"paymentAmount"`
	ServiceFee        decimal.Decimal `json:"serviceFee"`
	PosterID          uuid.UUID       `json:"posterId"`
	WorkerID          *uuid.UUID      `json:"workerId"`
	Status            JobStatus       `json:"status"`
	Location          string          `json:"location"`
	DateNeeded        *time.Time      `json:"dateNeeded,omitempty"`
	DatePosted        time.Time       `json:"datePosted"`
	DateCompleted     *time.Time      `json:"dateCompleted"`
	RequiredSkills    []string        `json:"requiredSkills"`
	EquipmentProvided bool            `json:"equipmentProvided"`
	PaymentIntentID   *string         `json:"paymentIntentId,omitempty"`
	// PaymentAttempts counts charges started for the job; each attempt gets its own
	// idempotency key at the processor.
	PaymentAttempts   int             `json:"paymentAttempts"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TotalAmount is always derived, never stored.
func (j Job) TotalAmount() decimal.Decimal {
	return j.PaymentAmount.Add(j.ServiceFee)
}

func (j Job) MarshalJSON() ([]byte, error) {
	type plain Job
	return json.Marshal(struct {
		plain
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}{plain(j), j.TotalAmount()})
}

// SetStatus moves the job along the state machine and keeps WorkerID consistent with it.
func (j *Job) SetStatus(next JobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return TransitionError(j.Status, next)
	}
	j.Status = next
	if !next.HoldsWorker() {
		j.WorkerID = nil
	}
	return nil
}

// NormalizeSkills trims, drops blanks and deduplicates while keeping first-seen order.
func NormalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
