// Package notify publishes lifecycle events for the delivery services (push, email)
// that live outside this process.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type EventType string

const (
	ApplicationReceived EventType = "application.received"
	ApplicationAccepted EventType = "application.accepted"
	ApplicationRejected EventType = "application.rejected"
	JobCanceled         EventType = "job.canceled"
	JobCompleted        EventType = "job.completed"
	PayoutPending       EventType = "payout.pending"
	PayoutSent          EventType = "payout.sent"
)

type Event struct {
	Type          EventType  `json:"type"`
	JobID         uuid.UUID  `json:"jobId"`
	UserID        uuid.UUID  `json:"userId"` // recipient
	ApplicationID *uuid.UUID `json:"applicationId,omitempty"`
	At            time.Time  `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type RedisNotifier struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisNotifier(rdb redis.UniversalClient, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}

// LogNotifier writes events to the log. It stands in for the broker when REDIS_ADDR is unset.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("type", string(ev.Type)),
		zap.String("job_id", ev.JobID.String()),
		zap.String("user_id", ev.UserID.String()),
		zap.Time("at", ev.At),
	}
	if ev.ApplicationID != nil {
		fields = append(fields, zap.String("application_id", ev.ApplicationID.String()))
	}
	n.log.Info("event", fields...)
	return nil
}

// Recorder keeps every event in memory for tests to inspect.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
