package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	logging "github.com/lfalegacy/pitchrank/pkg/logger"
)

type fakeRebuilder struct {
	mu    sync.Mutex
	seen  []model.PartitionKey
	delay time.Duration
	fail  map[model.PartitionKey]error
}

func (f *fakeRebuilder) Rebuild(_ context.Context, key model.PartitionKey) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.seen = append(f.seen, key)
	f.mu.Unlock()
	return f.fail[key]
}

func (f *fakeRebuilder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestQueue_EnqueueAndCoalesce(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	if !q.Enqueue(ctx, "overall|daily") {
		t.Fatal("first enqueue should succeed")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 queued, got %d", q.Len())
	}

	// A repeat request for a waiting partition coalesces.
	if !q.Enqueue(ctx, "overall|daily") {
		t.Error("coalesced enqueue should report success")
	}
	if q.Len() != 1 {
		t.Errorf("coalesced enqueue should not grow the queue, got %d", q.Len())
	}

	if !q.Enqueue(ctx, "overall|weekly") {
		t.Error("distinct partition should enqueue")
	}
	if q.Len() != 2 {
		t.Errorf("expected 2 queued, got %d", q.Len())
	}
}

func TestQueue_CapacityBound(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(WithCapacity(2))

	if !q.Enqueue(ctx, "k1|daily") || !q.Enqueue(ctx, "k2|daily") {
		t.Fatal("fills to capacity")
	}
	if q.Enqueue(ctx, "k3|daily") {
		t.Error("expected drop at capacity")
	}
	// Coalescing still works at capacity: the partition is already queued.
	if !q.Enqueue(ctx, "k1|daily") {
		t.Error("coalesce at capacity should succeed")
	}
	if q.Len() != 2 {
		t.Errorf("expected 2 queued, got %d", q.Len())
	}
}

func TestQueue_CloseRejectsNewWork(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	if !q.Enqueue(ctx, "k1|daily") {
		t.Fatal("enqueue before close")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected closed")
	}
	if q.Enqueue(ctx, "k2|daily") {
		t.Error("enqueue after close should fail")
	}

	// Queued work still drains.
	if key, ok := <-q.Dequeue(); !ok || key != "k1|daily" {
		t.Errorf("expected queued key to drain, got %q ok=%v", key, ok)
	}
	if _, ok := <-q.Dequeue(); ok {
		t.Error("expected channel closed after drain")
	}
}

func TestPool_RebuildsQueuedPartitions(t *testing.T) {
	_ = logging.Init("text")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue()
	rb := &fakeRebuilder{}
	pool := NewPool(2, q, rb)
	pool.Start(ctx)

	for _, key := range []model.PartitionKey{"overall|daily", "overall|weekly", "skill:power|monthly"} {
		if !q.Enqueue(ctx, key) {
			t.Fatalf("enqueue %s", key)
		}
	}

	waitFor(t, 2*time.Second, func() bool { return rb.count() == 3 })

	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestPool_StopDrainsQueuedWork(t *testing.T) {
	_ = logging.Init("text")
	ctx := context.Background()

	q := NewQueue()
	rb := &fakeRebuilder{}
	keys := []model.PartitionKey{"a|daily", "b|daily", "c|daily", "d|daily", "e|daily"}
	for _, key := range keys {
		if !q.Enqueue(ctx, key) {
			t.Fatalf("enqueue %s", key)
		}
	}

	pool := NewPool(2, q, rb)
	pool.Start(ctx)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if rb.count() != len(keys) {
		t.Errorf("expected %d rebuilds before stop returned, got %d", len(keys), rb.count())
	}
}

func TestPool_ContinuesAfterRebuildError(t *testing.T) {
	_ = logging.Init("text")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue()
	rb := &fakeRebuilder{fail: map[model.PartitionKey]error{
		"broken|daily": errors.New("window scan failed"),
	}}
	pool := NewPool(1, q, rb)
	pool.Start(ctx)

	q.Enqueue(ctx, "broken|daily")
	q.Enqueue(ctx, "healthy|daily")
	waitFor(t, 2*time.Second, func() bool { return rb.count() == 2 })

	// The failed rebuild must not kill the worker.
	q.Enqueue(ctx, "after|daily")
	waitFor(t, 2*time.Second, func() bool { return rb.count() == 3 })

	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestPool_StopTimeout(t *testing.T) {
	_ = logging.Init("text")
	ctx := context.Background()

	q := NewQueue()
	rb := &fakeRebuilder{delay: 500 * time.Millisecond}
	pool := NewPool(1, q, rb)
	pool.Start(ctx)
	q.Enqueue(ctx, "slow|daily")

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := pool.Stop(stopCtx); !errors.Is(err, ErrStopTimeout) {
		t.Errorf("expected ErrStopTimeout, got %v", err)
	}
}
