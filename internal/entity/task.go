package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Task struct {
	ID                uuid.UUID           `json:"id"`
	JobID             uuid.UUID           `json:"jobId"`
	Description       string              `json:"description"`
	Position          int                 `json:"position"`
	IsOptional        bool                `json:"isOptional"`
	IsCompleted       bool                `json:"isCompleted"`
	CompletedAt       *time.Time          `json:"completedAt"`
	DueTime           *time.Time          `json:"dueTime,omitempty"`
	Location          *string             `json:"location,omitempty"`
	BonusAmount       decimal.NullDecimal `json:"bonusAmount"`
	EstimatedDuration *string             `json:"estimatedDuration,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
}

// OutstandingRequired counts non-optional tasks that are not completed yet.
func OutstandingRequired(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.IsOptional && !t.IsCompleted {
			n++
		}
	}
	return n
}
