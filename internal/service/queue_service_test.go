package service

import "testing"

func TestNewQueueKeys(t *testing.T) {
	k := NewQueueKeys("payouts:queue", "payouts:processing")
	if k.High.QueueKey != "payouts:queue:high" || k.High.ProcessingKey != "payouts:processing:high" {
		t.Fatalf("unexpected high lane %+v", k.High)
	}
	if k.ProcessingMap != "payouts:processing:map" || k.Queued != "payouts:queue:queued" {
		t.Fatalf("unexpected bookkeeping keys %+v", k)
	}
}

func TestLaneByPriority(t *testing.T) {
	q := &redisPayoutQueue{keys: NewQueueKeys("q", "p")}
	tests := []struct {
		priority int
		want     string
	}{
		{-5, "q:low"},
		{PriorityLow, "q:low"},
		{PriorityNormal, "q:normal"},
		{PriorityHigh, "q:high"},
		{99, "q:high"},
	}
	for _, tt := range tests {
		if got := q.laneByPriority(tt.priority).QueueKey; got != tt.want {
			t.Fatalf("priority %d: got %s, want %s", tt.priority, got, tt.want)
		}
	}
	if lanes := q.lanes(); lanes[0].QueueKey != "q:high" || lanes[2].QueueKey != "q:low" {
		t.Fatalf("claim order must be high first, got %+v", lanes)
	}
}
