package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"jobId"`
	ReviewerID   uuid.UUID `json:"reviewerId"`
	RevieweeID   uuid.UUID `json:"revieweeId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	DateReviewed time.Time `json:"dateReviewed"`
}
