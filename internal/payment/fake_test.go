package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestFake_ProcessPaymentIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	jobID := uuid.New()
	req := PaymentRequest{
		JobID:           jobID,
		PaymentMethodID: "pm_card_visa",
		Amount:          decimal.RequireFromString("52.50"),
		IdempotencyKey:  ChargeKey(jobID, 1),
	}

	first, err := f.ProcessPayment(ctx, req)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	again, err := f.ProcessPayment(ctx, req)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if again.PaymentID != first.PaymentID || f.Charges() != 1 {
		t.Fatalf("resent attempt charged again: %s vs %s, %d charges", again.PaymentID, first.PaymentID, f.Charges())
	}

	req.IdempotencyKey = ChargeKey(jobID, 2)
	next, err := f.ProcessPayment(ctx, req)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if next.PaymentID == first.PaymentID || f.Charges() != 2 {
		t.Fatalf("expected a new charge for attempt 2")
	}
}

func TestChargeKey(t *testing.T) {
	id := uuid.MustParse("7f3c1a52-9d7e-4d2a-8a51-0b6f3e2c4d10")
	if got := ChargeKey(id, 3); got != "charge-7f3c1a52-9d7e-4d2a-8a51-0b6f3e2c4d10-3" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{"0": 0, "2.5": 250, "102.50": 10250, "0.005": 1}
	for in, want := range cases {
		if got := MinorUnits(decimal.RequireFromString(in)); got != want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}
