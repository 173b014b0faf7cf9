package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

func TestRetryPolicyNextDelayDefaults(t *testing.T) {
	var policy RetryPolicy
	if d := policy.NextDelay(0); d != time.Second {
		t.Fatalf("expected default 1s, got %s", d)
	}
	if d := policy.NextDelay(3); d != 4*time.Second {
		t.Fatalf("expected 4s with default factor, got %s", d)
	}
}

func TestRetryPolicyDo(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond}

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		calls := 0
		var retries []int
		err := policy.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, func(attempt int, _ error) {
			retries = append(retries, attempt)
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
		if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
			t.Fatalf("unexpected retry callbacks: %v", retries)
		}
	})

	t.Run("ReturnsLastError", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := policy.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		}, nil)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("StopsOnContextCancel", func(t *testing.T) {
		slow := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour}
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := slow.Do(ctx, func(context.Context) error {
			calls++
			cancel()
			return errors.New("fail")
		}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})
}

func TestPoolKeepsOrderPerKey(t *testing.T) {
	pool := NewPool(4, 16, nil)
	pool.Start(context.Background())

	var mu sync.Mutex
	seen := make(map[int64][]int)

	for i := 0; i < 50; i++ {
		for key := int64(1); key <= 3; key++ {
			key, i := key, i
			err := pool.Submit(context.Background(), key, func(context.Context) {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			})
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
	}
	pool.Stop()

	for key, order := range seen {
		if len(order) != 50 {
			t.Fatalf("key %d: expected 50 jobs, got %d", key, len(order))
		}
		for i, v := range order {
			if v != i {
				t.Fatalf("key %d: out of order at %d: %v", key, i, order)
			}
		}
	}
}

func TestPoolSurvivesPanic(t *testing.T) {
	pool := NewPool(1, 4, nil)
	pool.Start(context.Background())

	var done atomic.Int32
	_ = pool.Submit(context.Background(), 7, func(context.Context) { panic("boom") })
	_ = pool.Submit(context.Background(), 7, func(context.Context) { done.Add(1) })
	pool.Stop()

	if done.Load() != 1 {
		t.Fatalf("expected job after panic to run")
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(2, 1, nil)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	if err := pool.Submit(context.Background(), 1, func(context.Context) {}); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestPoolSubmitRespectsContext(t *testing.T) {
	pool := NewPool(1, 0, nil)
	// воркеры не запущены, очередь без буфера

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := pool.Submit(ctx, 1, func(context.Context) {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPoolShardNegativeKey(t *testing.T) {
	pool := NewPool(3, 0, nil)
	if s := pool.shard(-4); s != 1 {
		t.Fatalf("expected shard 1, got %d", s)
	}
	if pool.Size() != 3 {
		t.Fatalf("expected size 3, got %d", pool.Size())
	}
}
