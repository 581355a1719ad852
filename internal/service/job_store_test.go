package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gig-marketplace-service/internal/entity"
	"gig-marketplace-service/internal/repository"
	"gig-marketplace-service/internal/service"
)

func TestFeePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  service.FeePolicy
		amount  string
		wantFee string
	}{
		{"default flat", service.DefaultFeePolicy(), "100", "2.5"},
		{"free job", service.DefaultFeePolicy(), "0", "0"},
		{"percent", service.FeePolicy{Flat: decimal.Zero, Percent: decimal.RequireFromString("0.05")}, "100", "5"},
		{"rounded to cents", service.FeePolicy{Flat: decimal.RequireFromString("1"), Percent: decimal.RequireFromString("0.033")}, "10.01", "1.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Fee(decimal.RequireFromString(tt.amount))
			if !got.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Fatalf("expected fee %s, got %s", tt.wantFee, got)
			}
		})
	}
}

func TestJobStore_Create(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	job, err := e.jobs.Create(ctx, service.JobDraft{
		Title:          "Garden",
		Category:       "outdoor",
		PaymentType:    entity.PaymentHourly,
		PaymentAmount:  decimal.NewFromInt(30),
		PosterID:       e.posterID,
		RequiredSkills: []string{" digging ", "", "digging", "pruning"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != entity.StatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", job.Status)
	}
	if !job.ServiceFee.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected fee 2.5, got %s", job.ServiceFee)
	}
	if len(job.RequiredSkills) != 2 {
		t.Fatalf("expected normalized skills, got %v", job.RequiredSkills)
	}

	free, err := e.jobs.Create(ctx, service.JobDraft{Title: "Help", Category: "misc", PaymentType: entity.PaymentFixed, PosterID: e.posterID})
	if err != nil {
		t.Fatalf("create free: %v", err)
	}
	if free.Status != entity.StatusOpen || !free.ServiceFee.IsZero() {
		t.Fatalf("expected open job without fee, got %s %s", free.Status, free.ServiceFee)
	}
}

func TestJobStore_CreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	base := service.JobDraft{Title: "t", Category: "c", PaymentType: entity.PaymentFixed, PosterID: e.posterID}

	tests := []struct {
		name   string
		mutate func(d *service.JobDraft)
	}{
		{"missing title", func(d *service.JobDraft) { d.Title = "" }},
		{"bad payment type", func(d *service.JobDraft) { d.PaymentType = "barter" }},
		{"negative amount", func(d *service.JobDraft) { d.PaymentAmount = decimal.NewFromInt(-1) }},
		{"sub-cent amount", func(d *service.JobDraft) { d.PaymentAmount = decimal.RequireFromString("1.001") }},
		{"no poster", func(d *service.JobDraft) { d.PosterID = uuid.Nil }},
		{"blank task", func(d *service.JobDraft) { d.Tasks = []service.TaskDraft{{}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if _, err := e.jobs.Create(ctx, d); !errors.Is(err, entity.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	all, _ := e.jobs.List(ctx, repository.JobFilter{})
	if len(all) != 0 {
		t.Fatalf("expected no job stored, got %d", len(all))
	}
}

func TestJobStore_UpdateStatusEnforcesMachine(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0")

	if _, err := e.jobs.UpdateStatus(ctx, job.ID, entity.StatusCompleted); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition open->completed, got %v", err)
	}
	if _, err := e.jobs.UpdateStatus(ctx, job.ID, entity.StatusAssigned); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for assign without worker, got %v", err)
	}
	if _, err := e.jobs.UpdateStatus(ctx, job.ID, "archived"); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestJobStore_UpdateAndList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	job := e.openJob(t, "0")

	title := "Carry a sofa"
	got, err := e.jobs.Update(ctx, job.ID, service.JobPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != title {
		t.Fatalf("expected title %q, got %q", title, got.Title)
	}

	assigned, _ := e.assigned(t)
	if _, err := e.jobs.Update(ctx, assigned.ID, service.JobPatch{Title: &title}); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition editing an assigned job, got %v", err)
	}

	open, err := e.jobs.List(ctx, repository.JobFilter{Status: entity.StatusOpen})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 1 || open[0].ID != job.ID {
		t.Fatalf("expected only the open job, got %d", len(open))
	}
	if _, err := e.jobs.List(ctx, repository.JobFilter{Status: "nope"}); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
