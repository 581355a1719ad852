package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

type ReviewRequest struct {
	JobID      uuid.UUID `json:"jobId"`
	ReviewerID uuid.UUID `json:"reviewerId"`
	Rating     int       `json:"rating" validate:"gte=1,lte=5"`
	Comment    string    `json:"comment" validate:"max=2000"`
}

// ReviewSummary is a user's reviews with their average rating, rounded to 2 places.
type ReviewSummary struct {
	UserID  uuid.UUID       `json:"userId"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
	Reviews []entity.Review `json:"reviews"`
}

type ReviewService struct {
	store repository.Store
	now   func() time.Time
}

func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{store: store, now: utcNow}
}

// Create reviews the other party of a completed job.
func (s *ReviewService) Create(ctx context.Context, req ReviewRequest) (*entity.Review, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if err := requireID("jobId", req.JobID); err != nil {
		return nil, err
	}
	if err := requireID("reviewerId", req.ReviewerID); err != nil {
		return nil, err
	}

	job, err := s.store.Jobs().GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entity.StatusCompleted {
		return nil, entity.ValidationError("only completed jobs can be reviewed, job is %s", job.Status)
	}

	var reviewee uuid.UUID
	switch {
	case req.ReviewerID == job.PosterID && job.WorkerID != nil:
		reviewee = *job.WorkerID
	case job.WorkerID != nil && req.ReviewerID == *job.WorkerID:
		reviewee = job.PosterID
	default:
		return nil, entity.ValidationError("reviewer %s took no part in job %s", req.ReviewerID, job.ID)
	}

	rv := &entity.Review{
		ID:           uuid.New(),
		JobID:        job.ID,
		ReviewerID:   req.ReviewerID,
		RevieweeID:   reviewee,
		Rating:       req.Rating,
		Comment:      req.Comment,
		DateReviewed: s.now(),
	}
	if err := s.store.Reviews().Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Review, error) {
	if _, err := s.store.Jobs().GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.store.Reviews().ListByJob(ctx, jobID)
}

func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) (*ReviewSummary, error) {
	reviews, err := s.store.Reviews().ListByReviewee(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &ReviewSummary{UserID: userID, Count: len(reviews), Average: decimal.Zero, Reviews: reviews}
	if len(reviews) == 0 {
		sum.Reviews = []entity.Review{}
		return sum, nil
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	sum.Average = decimal.NewFromInt(int64(total)).DivRound(decimal.NewFromInt(int64(len(reviews))), 2)
	return sum, nil
}
