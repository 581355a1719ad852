package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/service"
)

func descriptions(tasks []entity.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}

func checkPositions(t *testing.T, tasks []entity.Task) {
	t.Helper()
	for i, task := range tasks {
		if task.Position != i {
			t.Fatalf("task %q at index %d has position %d", task.Description, i, task.Position)
		}
	}
}

func TestTaskStore_BatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0")

	want := []string{"a", "b", "c", "d", "e"}
	drafts := make([]service.TaskDraft, len(want))
	for i, d := range want {
		drafts[i] = service.TaskDraft{Description: d}
	}
	if _, err := e.tasks.AddBatch(ctx, job.ID, drafts); err != nil {
		t.Fatalf("batch: %v", err)
	}

	got, err := e.tasks.List(ctx, job.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	checkPositions(t, got)
	for i, d := range descriptions(got) {
		if d != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, d)
		}
	}

	more, err := e.tasks.AddBatch(ctx, job.ID, []service.TaskDraft{{Description: "f"}})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if more[0].Position != len(want) {
		t.Fatalf("expected appended at %d, got %d", len(want), more[0].Position)
	}
}

func TestTaskStore_AddAtPosition(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0", "a", "b", "c")

	at := 1
	task, err := e.tasks.Add(ctx, job.ID, service.TaskDraft{Description: "x", Position: &at})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Position != 1 {
		t.Fatalf("expected position 1, got %d", task.Position)
	}
	got, _ := e.tasks.List(ctx, job.ID)
	checkPositions(t, got)
	if d := descriptions(got); d[0] != "a" || d[1] != "x" || d[2] != "b" || d[3] != "c" {
		t.Fatalf("unexpected order %v", d)
	}
}

func TestTaskStore_Reorder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0", "a", "b", "c")
	tasks, _ := e.tasks.List(ctx, job.ID)

	ids := []uuid.UUID{tasks[2].ID, tasks[0].ID, tasks[1].ID}
	got, err := e.tasks.Reorder(ctx, job.ID, ids)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	checkPositions(t, got)
	for i, task := range got {
		if task.ID != ids[i] {
			t.Fatalf("expected %s at %d, got %s", ids[i], i, task.ID)
		}
	}

	cases := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing id", []uuid.UUID{tasks[0].ID, tasks[1].ID}},
		{"duplicate id", []uuid.UUID{tasks[0].ID, tasks[0].ID, tasks[1].ID}},
		{"foreign id", []uuid.UUID{tasks[0].ID, tasks[1].ID, uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.tasks.Reorder(ctx, job.ID, tc.ids); !errors.Is(err, entity.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			after, _ := e.tasks.List(ctx, job.ID)
			if after[0].ID != ids[0] {
				t.Fatalf("failed reorder changed the order")
			}
		})
	}
}

func TestTaskStore_DeleteCompactsPositions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0", "a", "b", "c")
	tasks, _ := e.tasks.List(ctx, job.ID)

	if err := e.tasks.Delete(ctx, tasks[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := e.tasks.List(ctx, job.ID)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	checkPositions(t, got)
	if err := e.tasks.Delete(ctx, tasks[1].ID); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStore_CompleteMovesJobInProgress(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job, _ := e.assigned(t, "a", "b")
	tasks, _ := e.tasks.List(ctx, job.ID)

	done, err := e.tasks.Complete(ctx, tasks[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.IsCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed task with timestamp")
	}
	first := *done.CompletedAt

	again, err := e.tasks.Complete(ctx, tasks[0].ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !again.CompletedAt.Equal(first) {
		t.Fatalf("expected completion time kept")
	}

	got, _ := e.jobs.Get(ctx, job.ID)
	if got.Status != entity.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}
}

func TestTaskStore_CompleteRequiresActiveJob(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0", "a")
	tasks, _ := e.tasks.List(ctx, job.ID)
	if _, err := e.tasks.Complete(ctx, tasks[0].ID); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on open job, got %v", err)
	}
}

func TestTaskStore_CompleteAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job, _ := e.assigned(t, "a", "b")
	tasks, _ := e.tasks.List(ctx, job.ID)

	_, err := e.tasks.CompleteAll(ctx, job.ID, []uuid.UUID{tasks[0].ID, uuid.New()})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ := e.tasks.List(ctx, job.ID)
	if got[0].IsCompleted {
		t.Fatalf("expected rollback of partial completion")
	}
	j, _ := e.jobs.Get(ctx, job.ID)
	if j.Status != entity.StatusAssigned {
		t.Fatalf("expected job still assigned, got %s", j.Status)
	}
}

func TestTaskStore_FrozenAfterCompletion(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job, _ := e.assigned(t)
	if _, err := e.life.CompleteJob(ctx, job.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := e.tasks.Add(ctx, job.ID, service.TaskDraft{Description: "late"}); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTaskStore_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0")
	if _, err := e.tasks.Add(ctx, job.ID, service.TaskDraft{}); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty description, got %v", err)
	}
	if _, err := e.tasks.AddBatch(ctx, job.ID, nil); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty batch, got %v", err)
	}
}
