// Package repository declares the persistence ports shared by the postgres and
// in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gig-marketplace-service/internal/entity"
)

// JobFilter narrows ListJobs. Zero values are ignored.
type JobFilter struct {
	PosterID *uuid.UUID
	WorkerID *uuid.UUID
	Status   entity.JobStatus
}

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	// GetForUpdate locks the job row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	List(ctx context.Context, f JobFilter) ([]entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
}

type ApplicationRepository interface {
	// Create fails with entity.ErrDuplicateApplication when an active application
	// for the same (job, worker) exists.
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	FindActive(ctx context.Context, jobID, workerID uuid.UUID) (*entity.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Application, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]entity.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus, at time.Time) error
	// RejectPending rejects every pending application of jobID except keep and returns them.
	RejectPending(ctx context.Context, jobID, keep uuid.UUID, at time.Time) ([]entity.Application, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	CreateBatch(ctx context.Context, tasks []*entity.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Task, error)
	Count(ctx context.Context, jobID uuid.UUID) (int, error)
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetPositions rewrites position = index for every id in one statement.
	SetPositions(ctx context.Context, jobID uuid.UUID, ids []uuid.UUID) error
}

type EarningRepository interface {
	Create(ctx context.Context, e *entity.Earning) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Earning, error)
	GetByJob(ctx context.Context, jobID uuid.UUID) (*entity.Earning, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]entity.Earning, error)
	ListPending(ctx context.Context, earnedBefore time.Time, limit int) ([]entity.Earning, error)
	MarkPaid(ctx context.Context, id uuid.UUID, transferID string, at time.Time) error
}

type ReviewRepository interface {
	// Create fails with entity.ErrDuplicateReview for a second review by the same reviewer.
	Create(ctx context.Context, r *entity.Review) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Review, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]entity.Review, error)
}

type PayoutAccountRepository interface {
	Create(ctx context.Context, a *entity.PayoutAccount) error
	GetByWorker(ctx context.Context, workerID uuid.UUID) (*entity.PayoutAccount, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Jobs() JobRepository
	Applications() ApplicationRepository
	Tasks() TaskRepository
	Earnings() EarningRepository
	Reviews() ReviewRepository
	PayoutAccounts() PayoutAccountRepository
}

// Store is the transaction boundary. fn either commits as a whole or leaves no writes behind.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(Repos) error) error
}
