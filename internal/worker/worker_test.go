package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gig-marketplace-service/internal/entity"
)

type fakePayer struct {
	mu   sync.Mutex
	paid []uuid.UUID
	err  error
}

func (f *fakePayer) Pay(ctx context.Context, id uuid.UUID) (*entity.Earning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.paid = append(f.paid, id)
	return &entity.Earning{ID: id, Status: entity.EarningPaid}, nil
}

func (f *fakePayer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paid)
}

type fakeQueue struct {
	mu    sync.Mutex
	ids   chan string
	acked []string
}

func (q *fakeQueue) Enqueue(ctx context.Context, id string, priority int) error {
	q.ids <- id
	return nil
}

func (q *fakeQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case id := <-q.ids:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", redis.Nil
	}
}

func (q *fakeQueue) Ack(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, id)
	return nil
}

func (q *fakeQueue) RequeueStale(ctx context.Context, max int64) (int64, error) { return 0, nil }

func (q *fakeQueue) ackedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked)
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	payer := &fakePayer{}
	p := NewProcessor(payer, nil)
	if err := p.Process(ctx, "not-a-uuid"); err != nil {
		t.Fatalf("expected malformed id dropped, got %v", err)
	}
	if err := p.Process(ctx, uuid.NewString()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if payer.count() != 1 {
		t.Fatalf("expected one payout, got %d", payer.count())
	}

	payer.err = entity.ErrNotFound
	if err := p.Process(ctx, uuid.NewString()); err != nil {
		t.Fatalf("expected unknown earning dropped, got %v", err)
	}

	payer.err = entity.ErrPaymentGateway
	if err := p.Process(ctx, uuid.NewString()); !errors.Is(err, entity.ErrPaymentGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

func TestPool_ProcessesAndAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := &fakeQueue{ids: make(chan string, 10)}
	payer := &fakePayer{}
	pool := NewPool(queue, NewProcessor(payer, nil), 3, nil)
	pool.claimDelay = 50 * time.Millisecond

	const n = 5
	for i := 0; i < n; i++ {
		_ = queue.Enqueue(ctx, uuid.NewString(), 0)
	}

	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for queue.ackedCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d acks, got %d", n, queue.ackedCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pool did not stop")
	}
	if payer.count() != n {
		t.Fatalf("expected %d payouts, got %d", n, payer.count())
	}
}

type downQueue struct {
	fakeQueue
	claims atomic.Int32
}

func (q *downQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	q.claims.Add(1)
	return "", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func TestPool_BacksOffWhenQueueIsDown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	queue := &downQueue{}
	pool := NewPool(queue, NewProcessor(&fakePayer{}, nil), 1, nil)
	pool.errDelay = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pool did not stop")
	}

	// about five attempts fit in the window; a spinning loop makes thousands
	if n := queue.claims.Load(); n < 2 || n > 10 {
		t.Fatalf("expected a handful of claims, got %d", n)
	}
}
