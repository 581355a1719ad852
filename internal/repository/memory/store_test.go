package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
)

func newJob() *entity.Job {
	now := time.Now().UTC()
	return &entity.Job{
		ID:            uuid.New(),
		Title:         "job",
		PaymentType:   entity.PaymentFixed,
		PaymentAmount: decimal.NewFromInt(10),
		PosterID:      uuid.New(),
		Status:        entity.StatusOpen,
		DatePosted:    now,
		UpdatedAt:     now,
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	job := newJob()
	if err := s.Jobs().Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := s.InTx(ctx, func(r repository.Repos) error {
		j, err := r.Jobs().GetForUpdate(ctx, job.ID)
		if err != nil {
			return err
		}
		j.Status = entity.StatusCanceled
		if err := r.Jobs().Update(ctx, j); err != nil {
			return err
		}
		if err := r.Tasks().Create(ctx, &entity.Task{ID: uuid.New(), JobID: job.ID, Description: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Jobs().GetByID(ctx, job.ID)
	if got.Status != entity.StatusOpen {
		t.Fatalf("expected rollback to open, got %s", got.Status)
	}
	if n, _ := s.Tasks().Count(ctx, job.ID); n != 0 {
		t.Fatalf("expected no tasks after rollback, got %d", n)
	}
}

func TestJobs_ReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	job := newJob()
	job.RequiredSkills = []string{"lifting"}
	_ = s.Jobs().Create(ctx, job)

	got, _ := s.Jobs().GetByID(ctx, job.ID)
	got.Title = "changed"
	got.RequiredSkills[0] = "changed"

	again, _ := s.Jobs().GetByID(ctx, job.ID)
	if again.Title != "job" || again.RequiredSkills[0] != "lifting" {
		t.Fatalf("store leaked a mutable reference")
	}
}

func TestApplications_DuplicateActive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	jobID, workerID := uuid.New(), uuid.New()

	first := &entity.Application{ID: uuid.New(), JobID: jobID, WorkerID: workerID, Status: entity.ApplicationPending}
	if err := s.Applications().Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &entity.Application{ID: uuid.New(), JobID: jobID, WorkerID: workerID, Status: entity.ApplicationPending}
	if err := s.Applications().Create(ctx, dup); !errors.Is(err, entity.ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}

	if err := s.Applications().UpdateStatus(ctx, first.ID, entity.ApplicationRejected, time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := s.Applications().Create(ctx, dup); err != nil {
		t.Fatalf("expected reapply after rejection, got %v", err)
	}
}

func TestTasks_SetPositionsRejectsForeignIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	jobID := uuid.New()
	a := &entity.Task{ID: uuid.New(), JobID: jobID, Description: "a", Position: 0}
	b := &entity.Task{ID: uuid.New(), JobID: jobID, Description: "b", Position: 1}
	_ = s.Tasks().CreateBatch(ctx, []*entity.Task{a, b})

	if err := s.Tasks().SetPositions(ctx, jobID, []uuid.UUID{b.ID, a.ID}); err != nil {
		t.Fatalf("set positions: %v", err)
	}
	got, _ := s.Tasks().ListByJob(ctx, jobID)
	if got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("expected b before a")
	}
	if err := s.Tasks().SetPositions(ctx, jobID, []uuid.UUID{uuid.New()}); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}
