package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

type TaskDraft struct {
	Description       string              `json:"description" validate:"required,max=500"`
	Position          *int                `json:"position" validate:"omitempty,gte=0"`
	IsOptional        bool                `json:"isOptional"`
	DueTime           *time.Time          `json:"dueTime"`
	Location          *string             `json:"location" validate:"omitempty,max=300"`
	BonusAmount       decimal.NullDecimal `json:"bonusAmount"`
	EstimatedDuration *string             `json:"estimatedDuration" validate:"omitempty,max=100"`
	Notes             *string             `json:"notes" validate:"omitempty,max=2000"`
}

// TaskPatch never touches position or completion; those have their own operations.
type TaskPatch struct {
	Description       *string             `json:"description" validate:"omitempty,min=1,max=500"`
	IsOptional        *bool               `json:"isOptional"`
	DueTime           *time.Time          `json:"dueTime"`
	Location          *string             `json:"location" validate:"omitempty,max=300"`
	BonusAmount       decimal.NullDecimal `json:"bonusAmount"`
	EstimatedDuration *string             `json:"estimatedDuration" validate:"omitempty,max=100"`
	Notes             *string             `json:"notes" validate:"omitempty,max=2000"`
}

func checkTaskDraft(d *TaskDraft) error {
	if d.BonusAmount.Valid {
		return requireNonNegative("bonusAmount", d.BonusAmount.Decimal)
	}
	return nil
}

type TaskStore struct {
	store repository.Store
	now   func() time.Time
}

func NewTaskStore(store repository.Store) *TaskStore {
	return &TaskStore{store: store, now: utcNow}
}

func (s *TaskStore) List(ctx context.Context, jobID uuid.UUID) ([]entity.Task, error) {
	if _, err := s.store.Jobs().GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByJob(ctx, jobID)
}

// Add appends the task, or inserts it at d.Position and shifts the tasks after it.
func (s *TaskStore) Add(ctx context.Context, jobID uuid.UUID, d TaskDraft) (*entity.Task, error) {
	if err := validateStruct(&d); err != nil {
		return nil, err
	}
	if err := checkTaskDraft(&d); err != nil {
		return nil, err
	}

	var out *entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if _, err := lockEditableJob(ctx, r, jobID); err != nil {
			return err
		}
		existing, err := r.Tasks().ListByJob(ctx, jobID)
		if err != nil {
			return err
		}

		t := newTask(jobID, d, len(existing))
		if err := r.Tasks().Create(ctx, t); err != nil {
			return err
		}

		if d.Position != nil && *d.Position < len(existing) {
			at := *d.Position
			ids := make([]uuid.UUID, 0, len(existing)+1)
			for _, e := range existing[:at] {
				ids = append(ids, e.ID)
			}
			ids = append(ids, t.ID)
			for _, e := range existing[at:] {
				ids = append(ids, e.ID)
			}
			if err := r.Tasks().SetPositions(ctx, jobID, ids); err != nil {
				return err
			}
			t.Position = at
		}
		out = t
		return nil
	})
	return out, err
}

// AddBatch appends the drafts in the given order.
func (s *TaskStore) AddBatch(ctx context.Context, jobID uuid.UUID, drafts []TaskDraft) ([]entity.Task, error) {
	if len(drafts) == 0 {
		return nil, entity.ValidationError("tasks must not be empty")
	}
	for i := range drafts {
		if err := validateStruct(&drafts[i]); err != nil {
			return nil, err
		}
		if err := checkTaskDraft(&drafts[i]); err != nil {
			return nil, err
		}
	}

	var out []entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if _, err := lockEditableJob(ctx, r, jobID); err != nil {
			return err
		}
		created, err := addTasks(ctx, r, jobID, drafts)
		out = created
		return err
	})
	return out, err
}

func addTasks(ctx context.Context, r repository.Repos, jobID uuid.UUID, drafts []TaskDraft) ([]entity.Task, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	count, err := r.Tasks().Count(ctx, jobID)
	if err != nil {
		return nil, err
	}
	batch := make([]*entity.Task, len(drafts))
	for i, d := range drafts {
		batch[i] = newTask(jobID, d, count+i)
	}
	if err := r.Tasks().CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create tasks: %w", err)
	}
	out := make([]entity.Task, len(batch))
	for i, t := range batch {
		out[i] = *t
	}
	return out, nil
}

func newTask(jobID uuid.UUID, d TaskDraft, position int) *entity.Task {
	return &entity.Task{
		ID:                uuid.New(),
		JobID:             jobID,
		Description:       d.Description,
		Position:          position,
		IsOptional:        d.IsOptional,
		DueTime:           d.DueTime,
		Location:          d.Location,
		BonusAmount:       d.BonusAmount,
		EstimatedDuration: d.EstimatedDuration,
		Notes:             d.Notes,
	}
}

func (s *TaskStore) Update(ctx context.Context, taskID uuid.UUID, p TaskPatch) (*entity.Task, error) {
	if err := validateStruct(&p); err != nil {
		return nil, err
	}
	if p.BonusAmount.Valid {
		if err := requireNonNegative("bonusAmount", p.BonusAmount.Decimal); err != nil {
			return nil, err
		}
	}

	var out *entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := lockEditableJob(ctx, r, t.JobID); err != nil {
			return err
		}

		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.IsOptional != nil {
			t.IsOptional = *p.IsOptional
		}
		if p.DueTime != nil {
			t.DueTime = p.DueTime
		}
		if p.Location != nil {
			t.Location = p.Location
		}
		if p.BonusAmount.Valid {
			t.BonusAmount = p.BonusAmount
		}
		if p.EstimatedDuration != nil {
			t.EstimatedDuration = p.EstimatedDuration
		}
		if p.Notes != nil {
			t.Notes = p.Notes
		}

		if err := r.Tasks().Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Delete removes the task and closes the gap it leaves in the positions.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	return s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := lockEditableJob(ctx, r, t.JobID); err != nil {
			return err
		}
		if err := r.Tasks().Delete(ctx, taskID); err != nil {
			return err
		}
		rest, err := r.Tasks().ListByJob(ctx, t.JobID)
		if err != nil {
			return err
		}
		return r.Tasks().SetPositions(ctx, t.JobID, taskIDs(rest))
	})
}

// Reorder requires ids to be exactly the job's task set; positions become the indexes.
func (s *TaskStore) Reorder(ctx context.Context, jobID uuid.UUID, ids []uuid.UUID) ([]entity.Task, error) {
	var out []entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if _, err := lockEditableJob(ctx, r, jobID); err != nil {
			return err
		}
		existing, err := r.Tasks().ListByJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := checkPermutation(existing, ids); err != nil {
			return err
		}
		if err := r.Tasks().SetPositions(ctx, jobID, ids); err != nil {
			return err
		}
		out, err = r.Tasks().ListByJob(ctx, jobID)
		return err
	})
	return out, err
}

func checkPermutation(existing []entity.Task, ids []uuid.UUID) error {
	if len(ids) != len(existing) {
		return entity.ValidationError("reorder must list all %d tasks, got %d", len(existing), len(ids))
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, t := range existing {
		known[t.ID] = false
	}
	for _, id := range ids {
		seen, ok := known[id]
		if !ok {
			return entity.ValidationError("task %s does not belong to this job", id)
		}
		if seen {
			return entity.ValidationError("task %s listed twice", id)
		}
		known[id] = true
	}
	return nil
}

func (s *TaskStore) Complete(ctx context.Context, taskID uuid.UUID) (*entity.Task, error) {
	var out *entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := s.beginWork(ctx, r, t.JobID); err != nil {
			return err
		}
		if err := completeTask(ctx, r, t, s.now()); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// CompleteAll completes the listed tasks of one job, or all of them when ids is empty.
func (s *TaskStore) CompleteAll(ctx context.Context, jobID uuid.UUID, ids []uuid.UUID) ([]entity.Task, error) {
	var out []entity.Task
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if err := s.beginWork(ctx, r, jobID); err != nil {
			return err
		}
		tasks, err := r.Tasks().ListByJob(ctx, jobID)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*entity.Task, len(tasks))
		for i := range tasks {
			byID[tasks[i].ID] = &tasks[i]
		}
		if len(ids) == 0 {
			ids = taskIDs(tasks)
		}

		now := s.now()
		for _, id := range ids {
			t, ok := byID[id]
			if !ok {
				return fmt.Errorf("task %s of job %s: %w", id, jobID, entity.ErrNotFound)
			}
			if err := completeTask(ctx, r, t, now); err != nil {
				return err
			}
		}
		out = tasks
		return nil
	})
	return out, err
}

// beginWork locks the job and moves an assigned job to in_progress: the first
// completed task is the worker starting.
func (s *TaskStore) beginWork(ctx context.Context, r repository.Repos, jobID uuid.UUID) error {
	job, err := r.Jobs().GetForUpdate(ctx, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case entity.StatusInProgress:
		return nil
	case entity.StatusAssigned:
		return setJobStatus(ctx, r, job, entity.StatusInProgress, s.now())
	default:
		return fmt.Errorf("%w: tasks of a %s job cannot be completed", entity.ErrInvalidTransition, job.Status)
	}
}

func completeTask(ctx context.Context, r repository.Repos, t *entity.Task, now time.Time) error {
	if t.IsCompleted {
		return nil
	}
	t.IsCompleted = true
	t.CompletedAt = &now
	return r.Tasks().Update(ctx, t)
}

func lockEditableJob(ctx context.Context, r repository.Repos, jobID uuid.UUID) (*entity.Job, error) {
	job, err := r.Jobs().GetForUpdate(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: job is %s, its tasks are frozen", entity.ErrInvalidTransition, job.Status)
	}
	return job, nil
}

func taskIDs(tasks []entity.Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
