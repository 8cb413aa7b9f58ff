// Package dedupe tracks already-submitted game sessions so repeat
// submissions can short-circuit before touching the store.
package dedupe

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Default sizing constants.
const (
	defaultMaxSize           = 500_000
	defaultFalsePositiveRate = 0.001
)

// Deduper records (user, session) pairs to catch duplicate submissions.
//
// The unique index on the store is the source of truth; the deduper is a
// fast advisory front. SeenAndRecord may rarely report true for a pair that
// was never recorded (bloom false positive or an evicted entry), so a true
// return must be confirmed against the store before treating the
// submission as a duplicate.
type Deduper interface {
	// SeenAndRecord atomically checks whether the pair may have been seen
	// and records it. Returns true if the pair was possibly seen before,
	// false if it is definitely new.
	SeenAndRecord(ctx context.Context, userID, sessionID string) bool

	// Unrecord removes a pair from the definite set, allowing a retry after
	// a failed store write. The bloom filter cannot forget, so a later
	// SeenAndRecord for the pair reports possibly-seen.
	Unrecord(ctx context.Context, userID, sessionID string)

	// Size returns the number of definitely recorded pairs.
	Size() int64
}

// sessionDeduper implements Deduper with a bloom filter front and a bounded
// map of definite members. The bloom filter absorbs the common
// never-seen-before case; the map answers definitely-seen and supports
// Unrecord. When bounded, the oldest definite entries are evicted FIFO and
// membership degrades to possibly-seen.
type sessionDeduper struct {
	mu      sync.Mutex
	filter  *bloom.BloomFilter
	seen    map[string]struct{}
	order   []string // insertion order, may contain stale keys after Unrecord
	maxSize int      // 0 or negative disables eviction
	fpRate  float64
}

// NewSessionDeduper creates a deduper with configuration options.
func NewSessionDeduper(opts ...Option) Deduper {
	d := &sessionDeduper{
		maxSize: defaultMaxSize,
		fpRate:  defaultFalsePositiveRate,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	estimate := d.maxSize
	if estimate <= 0 {
		estimate = defaultMaxSize
	}
	d.filter = bloom.NewWithEstimates(uint(estimate), d.fpRate)
	d.seen = make(map[string]struct{})

	return d
}

func key(userID, sessionID string) string {
	return userID + "|" + sessionID
}

// SeenAndRecord atomically checks whether the pair may have been seen and
// records it.
func (d *sessionDeduper) SeenAndRecord(ctx context.Context, userID, sessionID string) bool {
	_ = ctx
	k := key(userID, sessionID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[k]; ok {
		return true
	}

	possiblySeen := d.filter.TestString(k)
	if !possiblySeen {
		d.filter.AddString(k)
	}
	d.insertLocked(k)
	return possiblySeen
}

// Unrecord removes a pair from the definite set.
func (d *sessionDeduper) Unrecord(ctx context.Context, userID, sessionID string) {
	_ = ctx
	k := key(userID, sessionID)

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, k)
	// The order slice keeps the stale key; eviction skips it.
}

// Size returns the number of definitely recorded pairs.
func (d *sessionDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// insertLocked adds a key to the definite set, evicting the oldest live
// entry when the bound is hit. Must be called with d.mu held.
func (d *sessionDeduper) insertLocked(k string) {
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldestLocked()
	}
	d.seen[k] = struct{}{}
	d.order = append(d.order, k)
}

// evictOldestLocked drops stale order entries and removes the oldest key
// still in the definite set. Must be called with d.mu held.
func (d *sessionDeduper) evictOldestLocked() {
	for len(d.order) > 0 {
		oldest := d.order[0]
		d.order = d.order[1:]
		if _, ok := d.seen[oldest]; ok {
			delete(d.seen, oldest)
			return
		}
	}
}
