package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

type ApplyRequest struct {
	JobID            uuid.UUID           `json:"jobId"`
	WorkerID         uuid.UUID           `json:"workerId"`
	Message          string              `json:"message" validate:"max=2000"`
	HourlyRate       decimal.NullDecimal `json:"hourlyRate"`
	ExpectedDuration *string             `json:"expectedDuration" validate:"omitempty,max=100"`
}

func (req *ApplyRequest) check() error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := requireID("jobId", req.JobID); err != nil {
		return err
	}
	if err := requireID("workerId", req.WorkerID); err != nil {
		return err
	}
	if req.HourlyRate.Valid {
		return requireNonNegative("hourlyRate", req.HourlyRate.Decimal)
	}
	return nil
}

// ApplicationUpdate is the outcome of a status change: the application itself, its
// job when the job moved, and the applications that lost out.
type ApplicationUpdate struct {
	Application entity.Application   `json:"application"`
	Job         *entity.Job          `json:"job,omitempty"`
	Superseded  []entity.Application `json:"superseded,omitempty"`
}

type ApplicationStore struct {
	store repository.Store
	now   func() time.Time
}

func NewApplicationStore(store repository.Store) *ApplicationStore {
	return &ApplicationStore{store: store, now: utcNow}
}

func (s *ApplicationStore) Apply(ctx context.Context, req ApplyRequest) (*entity.Application, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	var out *entity.Application
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		// the job lock orders this against a concurrent accept
		job, err := r.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return err
		}
		if job.Status != entity.StatusOpen {
			return fmt.Errorf("%w: job is %s", entity.ErrJobNotOpen, job.Status)
		}
		if job.PosterID == req.WorkerID {
			return entity.ValidationError("posters cannot apply to their own job")
		}

		_, err = r.Applications().FindActive(ctx, req.JobID, req.WorkerID)
		switch {
		case err == nil:
			return entity.ErrDuplicateApplication
		case !errors.Is(err, entity.ErrNotFound):
			return err
		}

		now := s.now()
		app := &entity.Application{
			ID:               uuid.New(),
			JobID:            req.JobID,
			WorkerID:         req.WorkerID,
			Status:           entity.ApplicationPending,
			Message:          req.Message,
			HourlyRate:       req.HourlyRate,
			ExpectedDuration: req.ExpectedDuration,
			DateApplied:      now,
			UpdatedAt:        now,
		}
		if err := r.Applications().Create(ctx, app); err != nil {
			return err
		}
		out = app
		return nil
	})
	return out, err
}

// SetStatus resolves a pending application. Accepting assigns the job to the
// applicant and rejects every other pending application of that job.
func (s *ApplicationStore) SetStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus) (*ApplicationUpdate, error) {
	if status != entity.ApplicationAccepted && status != entity.ApplicationRejected {
		return nil, entity.ValidationError("status must be accepted or rejected")
	}

	var out *ApplicationUpdate
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		app, err := r.Applications().GetByID(ctx, id)
		if err != nil {
			return err
		}
		// lock order is job then application, same as Apply
		job, err := r.Jobs().GetForUpdate(ctx, app.JobID)
		if err != nil {
			return err
		}
		app, err = r.Applications().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if app.Status != entity.ApplicationPending {
			return fmt.Errorf("%w: application is already %s", entity.ErrInvalidTransition, app.Status)
		}

		now := s.now()
		if status == entity.ApplicationRejected {
			if err := r.Applications().UpdateStatus(ctx, app.ID, status, now); err != nil {
				return err
			}
			app.Status, app.UpdatedAt = status, now
			out = &ApplicationUpdate{Application: *app}
			return nil
		}

		if job.Status != entity.StatusOpen {
			return fmt.Errorf("%w: job is %s", entity.ErrJobNotOpen, job.Status)
		}
		worker := app.WorkerID
		job.WorkerID = &worker
		if err := setJobStatus(ctx, r, job, entity.StatusAssigned, now); err != nil {
			return err
		}
		if err := r.Applications().UpdateStatus(ctx, app.ID, status, now); err != nil {
			return err
		}
		app.Status, app.UpdatedAt = status, now

		superseded, err := r.Applications().RejectPending(ctx, job.ID, app.ID, now)
		if err != nil {
			return err
		}
		out = &ApplicationUpdate{Application: *app, Job: job, Superseded: superseded}
		return nil
	})
	return out, err
}

func (s *ApplicationStore) Get(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return s.store.Applications().GetByID(ctx, id)
}

func (s *ApplicationStore) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Application, error) {
	if _, err := s.store.Jobs().GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.store.Applications().ListByJob(ctx, jobID)
}

func (s *ApplicationStore) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]entity.Application, error) {
	return s.store.Applications().ListByWorker(ctx, workerID)
}
