package postgresql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gig-marketplace-service/internal/entity"
)

type ReviewRepository struct {
	db dbtx
}

func (r *ReviewRepository) Create(ctx context.Context, rv *entity.Review) error {
	const q = `
INSERT INTO reviews (id, job_id, reviewer_id, reviewee_id, rating, comment, date_reviewed)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.db.Exec(ctx, q, rv.ID, rv.JobID, rv.ReviewerID, rv.RevieweeID, rv.Rating, rv.Comment, rv.DateReviewed)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateReview
	}
	return err
}

func (r *ReviewRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Review, error) {
	return r.list(ctx, `SELECT id, job_id, reviewer_id, reviewee_id, rating, comment, date_reviewed
FROM reviews WHERE job_id = $1 ORDER BY date_reviewed, id;`, jobID)
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]entity.Review, error) {
	return r.list(ctx, `SELECT id, job_id, reviewer_id, reviewee_id, rating, comment, date_reviewed
FROM reviews WHERE reviewee_id = $1 ORDER BY date_reviewed DESC, id;`, revieweeID)
}

func (r *ReviewRepository) list(ctx context.Context, q string, id uuid.UUID) ([]entity.Review, error) {
	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Review
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.JobID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.DateReviewed); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

type PayoutAccountRepository struct {
	db dbtx
}

func (r *PayoutAccountRepository) Create(ctx context.Context, a *entity.PayoutAccount) error {
	const q = `INSERT INTO payout_accounts (worker_id, account_id, created_at) VALUES ($1, $2, $3);`
	_, err := r.db.Exec(ctx, q, a.WorkerID, a.AccountID, a.CreatedAt)
	return err
}

func (r *PayoutAccountRepository) GetByWorker(ctx context.Context, workerID uuid.UUID) (*entity.PayoutAccount, error) {
	const q = `SELECT worker_id, account_id, created_at FROM payout_accounts WHERE worker_id = $1;`

	var a entity.PayoutAccount
	if err := r.db.QueryRow(ctx, q, workerID).Scan(&a.WorkerID, &a.AccountID, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
