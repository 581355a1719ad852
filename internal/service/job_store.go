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

type JobDraft struct {
	Title             string             `json:"title" validate:"required,max=200"`
	Description       string             `json:"description" validate:"max=5000"`
	Category          string             `json:"category" validate:"required,max=100"`
	PaymentType       entity.PaymentType `json:"paymentType" validate:"required,oneof=hourly fixed"`
	PaymentAmount     decimal.Decimal    `json:"paymentAmount"`
	PosterID          uuid.UUID          `json:"posterId"`
	Location          string             `json:"location" validate:"max=300"`
	DateNeeded        *time.Time         `json:"dateNeeded"`
	RequiredSkills    []string           `json:"requiredSkills" validate:"max=50,dive,max=64"`
	EquipmentProvided bool               `json:"equipmentProvided"`
	Tasks             []TaskDraft        `json:"tasks" validate:"max=200,dive"`
}

// JobPatch edits descriptive fields only. Status moves through the lifecycle intents.
type JobPatch struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=5000"`
	Category          *string    `json:"category" validate:"omitempty,min=1,max=100"`
	Location          *string    `json:"location" validate:"omitempty,max=300"`
	DateNeeded        *time.Time `json:"dateNeeded"`
	RequiredSkills    []string   `json:"requiredSkills" validate:"omitempty,max=50,dive,max=64"`
	EquipmentProvided *bool      `json:"equipmentProvided"`
}

type JobStore struct {
	store repository.Store
	fees  FeePolicy
	now   func() time.Time
}

func NewJobStore(store repository.Store, fees FeePolicy) *JobStore {
	return &JobStore{store: store, fees: fees, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// Create stores the job together with its initial checklist. Paid jobs wait in
// pending_payment until the poster's payment goes through.
func (s *JobStore) Create(ctx context.Context, d JobDraft) (*entity.Job, error) {
	if err := validateStruct(&d); err != nil {
		return nil, err
	}
	if err := requireID("posterId", d.PosterID); err != nil {
		return nil, err
	}
	if err := requireNonNegative("paymentAmount", d.PaymentAmount); err != nil {
		return nil, err
	}
	for i := range d.Tasks {
		if err := checkTaskDraft(&d.Tasks[i]); err != nil {
			return nil, err
		}
	}

	now := s.now()
	status := entity.StatusOpen
	if d.PaymentAmount.IsPositive() {
		status = entity.StatusPendingPayment
	}
	job := &entity.Job{
		ID:                uuid.New(),
		Title:             d.Title,
		Description:       d.Description,
		Category:          d.Category,
		PaymentType:       d.PaymentType,
		PaymentAmount:     d.PaymentAmount,
		ServiceFee:        s.fees.Fee(d.PaymentAmount),
		PosterID:          d.PosterID,
		Status:            status,
		Location:          d.Location,
		DateNeeded:        d.DateNeeded,
		DatePosted:        now,
		RequiredSkills:    entity.NormalizeSkills(d.RequiredSkills),
		EquipmentProvided: d.EquipmentProvided,
		UpdatedAt:         now,
	}

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if err := r.Jobs().Create(ctx, job); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		_, err := addTasks(ctx, r, job.ID, d.Tasks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return s.store.Jobs().GetByID(ctx, id)
}

func (s *JobStore) List(ctx context.Context, f repository.JobFilter) ([]entity.Job, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, entity.ValidationError("unknown status %q", f.Status)
	}
	return s.store.Jobs().List(ctx, f)
}

func (s *JobStore) Update(ctx context.Context, id uuid.UUID, p JobPatch) (*entity.Job, error) {
	if err := validateStruct(&p); err != nil {
		return nil, err
	}

	var out *entity.Job
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		job, err := r.Jobs().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		switch job.Status {
		case entity.StatusPendingPayment, entity.StatusOpen, entity.StatusPaymentFailed:
		default:
			return fmt.Errorf("%w: job is %s and can no longer be edited", entity.ErrInvalidTransition, job.Status)
		}

		if p.Title != nil {
			job.Title = *p.Title
		}
		if p.Description != nil {
			job.Description = *p.Description
		}
		if p.Category != nil {
			job.Category = *p.Category
		}
		if p.Location != nil {
			job.Location = *p.Location
		}
		if p.DateNeeded != nil {
			job.DateNeeded = p.DateNeeded
		}
		if p.RequiredSkills != nil {
			job.RequiredSkills = entity.NormalizeSkills(p.RequiredSkills)
		}
		if p.EquipmentProvided != nil {
			job.EquipmentProvided = *p.EquipmentProvided
		}
		job.UpdatedAt = s.now()

		if err := r.Jobs().Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	return out, err
}

// UpdateStatus applies one state-machine step.
func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, next entity.JobStatus) (*entity.Job, error) {
	if !next.Valid() {
		return nil, entity.ValidationError("unknown status %q", next)
	}
	var out *entity.Job
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		job, err := r.Jobs().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := setJobStatus(ctx, r, job, next, s.now()); err != nil {
			return err
		}
		out = job
		return nil
	})
	return out, err
}

// setJobStatus validates and persists a transition on an already locked job.
func setJobStatus(ctx context.Context, r repository.Repos, job *entity.Job, next entity.JobStatus, now time.Time) error {
	if next == entity.StatusAssigned && job.WorkerID == nil {
		return fmt.Errorf("%w: job %s cannot be assigned without a worker", entity.ErrInvalidTransition, job.ID)
	}
	if err := job.SetStatus(next); err != nil {
		return err
	}
	if next == entity.StatusCompleted {
		job.DateCompleted = &now
	}
	job.UpdatedAt = now
	return r.Jobs().Update(ctx, job)
}
