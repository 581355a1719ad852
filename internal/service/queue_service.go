package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PriorityLow    = 0
	PriorityNormal = 1
	PriorityHigh   = 2
)

// Queue carries earning ids whose payout still has to be executed.
type Queue interface {
	Enqueue(ctx context.Context, id string, priority int) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, id string) error
	RequeueStale(ctx context.Context, maxPerLane int64) (int64, error)
}

type Lane struct {
	QueueKey      string
	ProcessingKey string
}

type QueueKeys struct {
	// ProcessingMap is a hash id -> processing list, so Ack knows which list to clean.
	ProcessingMap string
	// Queued is a set of ids that are waiting or in flight; Enqueue skips members.
	Queued string
	Low    Lane
	Normal Lane
	High   Lane
}

// NewQueueKeys derives every key from a base queue key and a base processing key.
func NewQueueKeys(queueKey, processingKey string) QueueKeys {
	return QueueKeys{
		ProcessingMap: processingKey + ":map",
		Queued:        queueKey + ":queued",
		Low:           Lane{QueueKey: queueKey + ":low", ProcessingKey: processingKey + ":low"},
		Normal:        Lane{QueueKey: queueKey + ":normal", ProcessingKey: processingKey + ":normal"},
		High:          Lane{QueueKey: queueKey + ":high", ProcessingKey: processingKey + ":high"},
	}
}

// redisPayoutQueue is a reliable priority queue on Redis lists.
// Claim: BRPOPLPUSH lane.queue -> lane.processing
// Ack:   LREM from the processing list recorded in the processing map, SREM from Queued.
type redisPayoutQueue struct {
	rdb  redis.UniversalClient
	keys QueueKeys
}

func NewRedisPayoutQueue(rdb redis.UniversalClient, keys QueueKeys) Queue {
	return &redisPayoutQueue{rdb: rdb, keys: keys}
}

func clampPriority(p int) int {
	if p < PriorityLow {
		return PriorityLow
	}
	if p > PriorityHigh {
		return PriorityHigh
	}
	return p
}

func (q *redisPayoutQueue) lanes() []Lane {
	return []Lane{q.keys.High, q.keys.Normal, q.keys.Low}
}

func (q *redisPayoutQueue) laneByPriority(p int) Lane {
	switch clampPriority(p) {
	case PriorityHigh:
		return q.keys.High
	case PriorityNormal:
		return q.keys.Normal
	default:
		return q.keys.Low
	}
}

func (q *redisPayoutQueue) Enqueue(ctx context.Context, id string, priority int) error {
	added, err := q.rdb.SAdd(ctx, q.keys.Queued, id).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		// already waiting or being processed
		return nil
	}
	if err := q.rdb.LPush(ctx, q.laneByPriority(priority).QueueKey, id).Err(); err != nil {
		_ = q.rdb.SRem(ctx, q.keys.Queued, id).Err()
		return err
	}
	return nil
}

// ClaimBlocking polls high->normal->low in short blocking slots so priority is
// respected while still mostly blocking. timeout <= 0 waits forever.
func (q *redisPayoutQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	forever := timeout <= 0
	deadline := time.Now().Add(timeout)

	slot := 1 * time.Second
	if !forever && timeout < slot {
		slot = timeout
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !forever && time.Now().After(deadline) {
			return "", redis.Nil
		}

		for _, ln := range q.lanes() {
			wait := slot
			if !forever {
				remain := time.Until(deadline)
				if remain <= 0 {
					return "", redis.Nil
				}
				if remain < wait {
					wait = remain
				}
			}

			id, err := q.rdb.BRPopLPush(ctx, ln.QueueKey, ln.ProcessingKey, wait).Result()
			if err == nil {
				if hErr := q.rdb.HSet(ctx, q.keys.ProcessingMap, id, ln.ProcessingKey).Err(); hErr != nil {
					return "", hErr
				}
				return id, nil
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return "", err
		}
	}
}

func (q *redisPayoutQueue) Ack(ctx context.Context, id string) error {
	defer func() { _ = q.rdb.SRem(ctx, q.keys.Queued, id).Err() }()

	processingKey, err := q.rdb.HGet(ctx, q.keys.ProcessingMap, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// no mapping (manual cleanup or a crash between claim and HSET): try every lane
			for _, ln := range q.lanes() {
				_ = q.rdb.LRem(ctx, ln.ProcessingKey, 1, id).Err()
			}
			return nil
		}
		return err
	}

	if err := q.rdb.LRem(ctx, processingKey, 1, id).Err(); err != nil {
		return err
	}
	_ = q.rdb.HDel(ctx, q.keys.ProcessingMap, id).Err()
	return nil
}

// RequeueStale moves whatever sits in processing back to its queue (at-least-once).
// Run it only when no worker is mid-flight, e.g. on worker start.
func (q *redisPayoutQueue) RequeueStale(ctx context.Context, maxPerLane int64) (int64, error) {
	var moved int64

	for _, ln := range q.lanes() {
		for i := int64(0); i < maxPerLane; i++ {
			id, err := q.rdb.RPopLPush(ctx, ln.ProcessingKey, ln.QueueKey).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					break
				}
				return moved, err
			}
			if id != "" {
				moved++
				_ = q.rdb.HDel(ctx, q.keys.ProcessingMap, id).Err()
			}
		}
	}

	return moved, nil
}
