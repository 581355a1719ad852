package notify

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	appID := uuid.New()
	ev := Event{Type: ApplicationAccepted, JobID: uuid.New(), UserID: uuid.New(), ApplicationID: &appID, At: time.Now()}
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("notify: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["type"] != string(ApplicationAccepted) || fields["job_id"] != ev.JobID.String() || fields["application_id"] != appID.String() {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	_ = r.Notify(ctx, Event{Type: JobCompleted})
	_ = r.Notify(ctx, Event{Type: PayoutSent})

	got := r.Events()
	if len(got) != 2 || got[0].Type != JobCompleted || got[1].Type != PayoutSent {
		t.Fatalf("unexpected events %+v", got)
	}
	got[0].Type = JobCanceled
	if r.Events()[0].Type != JobCompleted {
		t.Fatalf("Events must return a copy")
	}
}

func TestRedisNotifierIntegrationPublish(t *testing.T) {
	addr := os.Getenv("GIG_REDIS_ADDR_INTEGRATION")
	if addr == "" {
		t.Skip("set GIG_REDIS_ADDR_INTEGRATION to run Redis integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	channel := "gig:test:events:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev := Event{Type: PayoutPending, JobID: uuid.New(), UserID: uuid.New(), At: time.Now().UTC().Truncate(time.Second)}
	if err := NewRedisNotifier(rdb, channel).Notify(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Type != ev.Type || got.JobID != ev.JobID || got.UserID != ev.UserID || !got.At.Equal(ev.At) {
		t.Fatalf("payload mismatch: %+v vs %+v", got, ev)
	}
}
