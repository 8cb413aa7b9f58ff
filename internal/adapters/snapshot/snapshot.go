// Package snapshot caches built leaderboard partitions for reads.
//
// Each partition holds its latest build behind an atomic pointer, so
// readers never block on a rebuild. A snapshot past its TTL is still
// served, flagged stale, while the refresh machinery replaces it.
package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

const defaultTTL = 30 * time.Second

// Snapshot is one built leaderboard partition.
type Snapshot struct {
	Key         model.PartitionKey       `json:"key"`
	Category    model.Category           `json:"category"`
	Period      model.Period             `json:"period"`
	Entries     []model.LeaderboardEntry `json:"entries"`
	WindowStart time.Time                `json:"window_start,omitzero"`
	BuiltAt     time.Time                `json:"built_at"`
}

// Status reports how a cached snapshot relates to its TTL.
type Status int

// Snapshot lookup outcomes.
const (
	StatusMiss Status = iota
	StatusFresh
	StatusStale
)

// String returns the status name for log fields.
func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	default:
		return "miss"
	}
}

// Cache memoizes leaderboard snapshots per partition.
type Cache struct {
	mu    sync.RWMutex
	parts map[model.PartitionKey]*atomic.Pointer[Snapshot]

	ttl    time.Duration
	clock  func() time.Time
	mirror *Mirror
}

// NewCache creates a snapshot cache with configuration options.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		parts: make(map[model.PartitionKey]*atomic.Pointer[Snapshot]),
		ttl:   defaultTTL,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot for a partition and whether it is
// still within its TTL. On a local miss the mirror, when configured,
// is consulted before reporting StatusMiss.
func (c *Cache) Get(ctx context.Context, key model.PartitionKey) (*Snapshot, Status) {
	c.mu.RLock()
	p, ok := c.parts[key]
	c.mu.RUnlock()
	if ok {
		if snap := p.Load(); snap != nil {
			return snap, c.observe(snap)
		}
	}

	if c.mirror != nil {
		snap, err := c.mirror.Fetch(ctx, key)
		if err != nil {
			metrics.RecordSnapshotMirrorError()
		} else if snap != nil {
			c.store(snap)
			return snap, c.observe(snap)
		}
	}

	metrics.RecordSnapshotCacheMiss()
	return nil, StatusMiss
}

// Put publishes a freshly built snapshot, replacing any previous build
// of the same partition, and mirrors it when a mirror is configured.
func (c *Cache) Put(ctx context.Context, snap *Snapshot) {
	c.store(snap)
	metrics.UpdateRankedPlayers(string(snap.Key), len(snap.Entries))
	metrics.UpdateSnapshotLastUnix(snap.BuiltAt.Unix())

	if c.mirror != nil {
		if err := c.mirror.Publish(ctx, snap); err != nil {
			metrics.RecordSnapshotMirrorError()
		} else {
			metrics.RecordSnapshotMirrorPublish()
		}
	}
}

// PreviousRanks returns the rank of each user in the current snapshot,
// for rank-movement annotation on the next build. Nil when the
// partition has never been built.
func (c *Cache) PreviousRanks(key model.PartitionKey) map[string]int {
	c.mu.RLock()
	p, ok := c.parts[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	snap := p.Load()
	if snap == nil {
		return nil
	}
	prev := make(map[string]int, len(snap.Entries))
	for _, e := range snap.Entries {
		prev[e.UserID] = e.Rank
	}
	return prev
}

// Keys returns the partitions currently cached.
func (c *Cache) Keys() []model.PartitionKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]model.PartitionKey, 0, len(c.parts))
	for k := range c.parts {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of cached partitions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.parts)
}

func (c *Cache) store(snap *Snapshot) {
	c.mu.Lock()
	p, ok := c.parts[snap.Key]
	if !ok {
		p = &atomic.Pointer[Snapshot]{}
		c.parts[snap.Key] = p
	}
	c.mu.Unlock()
	p.Store(snap)
}

func (c *Cache) observe(snap *Snapshot) Status {
	if c.clock().Sub(snap.BuiltAt) <= c.ttl {
		metrics.RecordSnapshotCacheHit()
		return StatusFresh
	}
	metrics.RecordSnapshotServedStale()
	return StatusStale
}
