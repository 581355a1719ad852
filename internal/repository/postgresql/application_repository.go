package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gig-marketplace-service/internal/entity"
)

type ApplicationRepository struct {
	db dbtx
}

const applicationColumns = `id, job_id, worker_id, status, message, hourly_rate, expected_duration, date_applied, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, a *entity.Application) error {
	const q = `
INSERT INTO applications (id, job_id, worker_id, status, message, hourly_rate, expected_duration, date_applied, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8);
`
	_, err := r.db.Exec(ctx, q,
		a.ID, a.JobID, a.WorkerID, string(a.Status), a.Message, a.HourlyRate, a.ExpectedDuration, a.DateApplied,
	)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateApplication
	}
	return err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.getOne(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1;`, id)
}

func (r *ApplicationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.getOne(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE;`, id)
}

func (r *ApplicationRepository) FindActive(ctx context.Context, jobID, workerID uuid.UUID) (*entity.Application, error) {
	const q = `SELECT ` + applicationColumns + ` FROM applications
WHERE job_id = $1 AND worker_id = $2 AND status <> 'rejected';`
	return r.getOne(ctx, q, jobID, workerID)
}

func (r *ApplicationRepository) getOne(ctx context.Context, q string, args ...any) (*entity.Application, error) {
	a, err := scanApplication(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY date_applied, id;`, jobID)
}

func (r *ApplicationRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]entity.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE worker_id = $1 ORDER BY date_applied DESC, id;`, workerID)
}

func (r *ApplicationRepository) list(ctx context.Context, q string, args ...any) ([]entity.Application, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus, at time.Time) error {
	const q = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1;`

	tag, err := r.db.Exec(ctx, q, id, string(status), at)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateApplication
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) RejectPending(ctx context.Context, jobID, keep uuid.UUID, at time.Time) ([]entity.Application, error) {
	const q = `
UPDATE applications SET status = 'rejected', updated_at = $3
WHERE job_id = $1 AND id <> $2 AND status = 'pending'
RETURNING ` + applicationColumns + `;`
	return r.list(ctx, q, jobID, keep, at)
}

func scanApplication(row pgx.Row) (*entity.Application, error) {
	var (
		a          entity.Application
		statusText string
	)
	if err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.WorkerID,
		&statusText,
		&a.Message,
		&a.HourlyRate,
		&a.ExpectedDuration,
		&a.DateApplied,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = entity.ApplicationStatus(statusText)
	return &a, nil
}
