// Package refresh schedules leaderboard partition rebuilds after
// writes and around stale reads.
//
// The queue is bounded and coalescing: a partition already waiting for
// a rebuild absorbs further requests until a worker claims it, so a
// burst of writes to one partition costs one rebuild. Rebuilds read
// store state at processing time, which keeps coalescing safe: any
// write that coalesced into a queued rebuild is covered by it.
package refresh

import (
	"context"
	"sync"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue is a bounded, coalescing partition-rebuild queue.
type Queue struct {
	mu      sync.Mutex
	pending map[model.PartitionKey]struct{}
	keys    chan model.PartitionKey

	capacity int
	closed   bool
}

// NewQueue creates a rebuild queue with configuration options.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.pending = make(map[model.PartitionKey]struct{}, q.capacity)
	q.keys = make(chan model.PartitionKey, q.capacity)

	metrics.UpdateRefreshQueueCapacity(q.capacity)
	metrics.UpdateRefreshQueueDepth(0)
	return q
}

// Enqueue requests a rebuild of one partition. A partition already
// waiting coalesces into the queued rebuild. Returns false when the
// queue is full or closed.
func (q *Queue) Enqueue(ctx context.Context, key model.PartitionKey) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordRefreshDropped()
		metrics.RecordErrorByComponent("refresh", "queue_closed")
		return false
	}
	if _, waiting := q.pending[key]; waiting {
		metrics.RecordRefreshCoalesced()
		return true
	}
	if len(q.keys) >= q.capacity {
		metrics.RecordRefreshDropped()
		metrics.RecordErrorByComponent("refresh", "queue_full")
		return false
	}

	q.pending[key] = struct{}{}
	// Cannot block: the buffer has room and sends only happen under
	// the lock.
	q.keys <- key
	metrics.RecordRefreshEnqueued()
	metrics.UpdateRefreshQueueDepth(len(q.keys))
	return true
}

// Dequeue returns the channel workers consume partition keys from.
// It closes when the queue closes, after queued keys drain.
func (q *Queue) Dequeue() <-chan model.PartitionKey {
	return q.keys
}

// Claim marks a partition as no longer waiting, reopening coalescing
// for it. Workers call it when they take a key, so a write landing
// mid-rebuild queues a fresh rebuild instead of being absorbed.
func (q *Queue) Claim(key model.PartitionKey) {
	q.mu.Lock()
	delete(q.pending, key)
	metrics.UpdateRefreshQueueDepth(len(q.keys))
	q.mu.Unlock()
}

// Len returns the number of queued rebuilds.
func (q *Queue) Len() int {
	return len(q.keys)
}

// Close stops intake. Queued rebuilds still drain to the workers.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.keys)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has stopped accepting work.
func (q *Queue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
