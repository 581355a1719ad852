package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gig-marketplace-service/internal/entity"
)

type TaskRepository struct {
	db dbtx
}

const taskColumns = `id, job_id, description, position, is_optional, is_completed, completed_at,
due_time, location, bonus_amount, estimated_duration, notes`

const insertTask = `
INSERT INTO tasks (id, job_id, description, position, is_optional, is_completed, completed_at,
	due_time, location, bonus_amount, estimated_duration, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`

func taskArgs(t *entity.Task) []any {
	return []any{
		t.ID, t.JobID, t.Description, t.Position, t.IsOptional, t.IsCompleted, t.CompletedAt,
		t.DueTime, t.Location, t.BonusAmount, t.EstimatedDuration, t.Notes,
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	_, err := r.db.Exec(ctx, insertTask, taskArgs(t)...)
	return err
}

// CreateBatch sends all inserts in one round trip.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*entity.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, t := range tasks {
		b.Queue(insertTask, taskArgs(t)...)
	}
	br := r.db.SendBatch(ctx, b)
	defer br.Close()

	for i := range tasks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE job_id = $1 ORDER BY position, id;`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Count(ctx context.Context, jobID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE job_id = $1;`, jobID).Scan(&n)
	return n, err
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	const q = `
UPDATE tasks SET
	description = $2, position = $3, is_optional = $4, is_completed = $5, completed_at = $6,
	due_time = $7, location = $8, bonus_amount = $9, estimated_duration = $10, notes = $11
WHERE id = $1;
`
	tag, err := r.db.Exec(ctx, q,
		t.ID, t.Description, t.Position, t.IsOptional, t.IsCompleted, t.CompletedAt,
		t.DueTime, t.Location, t.BonusAmount, t.EstimatedDuration, t.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) SetPositions(ctx context.Context, jobID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	idText := make([]string, len(ids))
	positions := make([]int32, len(ids))
	for i, id := range ids {
		idText[i] = id.String()
		positions[i] = int32(i)
	}

	const q = `
UPDATE tasks t SET position = v.pos
FROM unnest($2::text[], $3::int[]) AS v(id, pos)
WHERE t.job_id = $1 AND t.id = v.id::uuid;
`
	tag, err := r.db.Exec(ctx, q, jobID, idText, positions)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("reorder touched %d of %d tasks: %w", tag.RowsAffected(), len(ids), entity.ErrNotFound)
	}
	return nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	if err := row.Scan(
		&t.ID,
		&t.JobID,
		&t.Description,
		&t.Position,
		&t.IsOptional,
		&t.IsCompleted,
		&t.CompletedAt,
		&t.DueTime,
		&t.Location,
		&t.BonusAmount,
		&t.EstimatedDuration,
		&t.Notes,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
