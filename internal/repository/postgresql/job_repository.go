package postgresql

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

type JobRepository struct {
	db dbtx
}

const jobColumns = `id, title, description, category, payment_type, payment_amount, service_fee,
poster_id, worker_id, status, location, date_needed, date_posted, date_completed,
required_skills, equipment_provided, payment_intent_id, payment_attempts, updated_at`

func (r *JobRepository) Create(ctx context.Context, j *entity.Job) error {
	const q = `
INSERT INTO jobs (id, title, description, category, payment_type, payment_amount, service_fee,
	poster_id, worker_id, status, location, date_needed, date_posted, required_skills,
	equipment_provided, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $13);
`
	_, err := r.db.Exec(ctx, q,
		j.ID, j.Title, j.Description, j.Category, string(j.PaymentType), j.PaymentAmount, j.ServiceFee,
		j.PosterID, j.WorkerID, string(j.Status), j.Location, j.DateNeeded, j.DatePosted,
		j.RequiredSkills, j.EquipmentProvided,
	)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1;`, id)
}

func (r *JobRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE;`, id)
}

func (r *JobRepository) get(ctx context.Context, q string, id uuid.UUID) (*entity.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

func (r *JobRepository) List(ctx context.Context, f repository.JobFilter) ([]entity.Job, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.PosterID != nil {
		add("poster_id = ?", *f.PosterID)
	}
	if f.WorkerID != nil {
		add("worker_id = ?", *f.WorkerID)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}

	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date_posted DESC, id;`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *JobRepository) Update(ctx context.Context, j *entity.Job) error {
	const q = `
UPDATE jobs SET
	title = $2, description = $3, category = $4, location = $5, date_needed = $6,
	required_skills = $7, equipment_provided = $8, worker_id = $9, status = $10,
	date_completed = $11, payment_intent_id = $12, payment_attempts = $13, updated_at = $14
WHERE id = $1;
`
	tag, err := r.db.Exec(ctx, q,
		j.ID, j.Title, j.Description, j.Category, j.Location, j.DateNeeded,
		j.RequiredSkills, j.EquipmentProvided, j.WorkerID, string(j.Status),
		j.DateCompleted, j.PaymentIntentID, j.PaymentAttempts, j.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		j           entity.Job
		paymentType string
		statusText  string
	)
	if err := row.Scan(
		&j.ID,
		&j.Title,
		&j.Description,
		&j.Category,
		&paymentType,
		&j.PaymentAmount,
		&j.ServiceFee,
		&j.PosterID,
		&j.WorkerID, // NULL => nil
		&statusText,
		&j.Location,
		&j.DateNeeded,
		&j.DatePosted,
		&j.DateCompleted,
		&j.RequiredSkills,
		&j.EquipmentProvided,
		&j.PaymentIntentID,
		&j.PaymentAttempts,
		&j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	j.PaymentType = entity.PaymentType(paymentType)
	j.Status = entity.JobStatus(statusText)
	return &j, nil
}
