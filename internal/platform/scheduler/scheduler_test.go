package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRotator struct {
	calls atomic.Int64
}

func (c *countingRotator) RotateAll(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 3, nil
}

func TestNewValidatesArguments(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, time.Minute); err == nil {
		t.Fatalf("expected error for nil rotator")
	}

	if _, err := New(&countingRotator{}, 0); err == nil {
		t.Fatalf("expected error for non-positive interval")
	}
}

func TestSchedulerRunsRotation(t *testing.T) {
	t.Parallel()

	rotator := &countingRotator{}
	s, err := New(rotator, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for rotator.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("rotation was never invoked")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
