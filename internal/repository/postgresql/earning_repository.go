package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gig-marketplace-service/internal/entity"
)

type EarningRepository struct {
	db dbtx
}

const earningColumns = `id, job_id, worker_id, amount, status, date_earned, transfer_id, date_paid`

func (r *EarningRepository) Create(ctx context.Context, e *entity.Earning) error {
	const q = `
INSERT INTO earnings (id, job_id, worker_id, amount, status, date_earned, transfer_id, date_paid)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.db.Exec(ctx, q, e.ID, e.JobID, e.WorkerID, e.Amount, string(e.Status), e.DateEarned, e.TransferID, e.DatePaid)
	return err
}

func (r *EarningRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Earning, error) {
	return r.getOne(ctx, `SELECT `+earningColumns+` FROM earnings WHERE id = $1;`, id)
}

func (r *EarningRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.Earning, error) {
	return r.getOne(ctx, `SELECT `+earningColumns+` FROM earnings WHERE job_id = $1;`, jobID)
}

func (r *EarningRepository) getOne(ctx context.Context, q string, id uuid.UUID) (*entity.Earning, error) {
	e, err := scanEarning(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EarningRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]entity.Earning, error) {
	return r.list(ctx, `SELECT `+earningColumns+` FROM earnings WHERE worker_id = $1 ORDER BY date_earned DESC, id;`, workerID)
}

func (r *EarningRepository) ListPending(ctx context.Context, earnedBefore time.Time, limit int) ([]entity.Earning, error) {
	const q = `SELECT ` + earningColumns + ` FROM earnings
WHERE status = 'pending' AND amount > 0 AND date_earned < $1
ORDER BY date_earned
LIMIT $2;`
	return r.list(ctx, q, earnedBefore, limit)
}

func (r *EarningRepository) list(ctx context.Context, q string, args ...any) ([]entity.Earning, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Earning
	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *EarningRepository) MarkPaid(ctx context.Context, id uuid.UUID, transferID string, at time.Time) error {
	const q = `UPDATE earnings SET status = 'paid', transfer_id = $2, date_paid = $3 WHERE id = $1;`

	tag, err := r.db.Exec(ctx, q, id, transferID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func scanEarning(row pgx.Row) (*entity.Earning, error) {
	var (
		e          entity.Earning
		statusText string
	)
	if err := row.Scan(
		&e.ID,
		&e.JobID,
		&e.WorkerID,
		&e.Amount,
		&statusText,
		&e.DateEarned,
		&e.TransferID,
		&e.DatePaid,
	); err != nil {
		return nil, err
	}
	e.Status = entity.EarningStatus(statusText)
	return &e, nil
}
