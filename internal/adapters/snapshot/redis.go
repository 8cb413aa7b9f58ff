package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

const (
	defaultMirrorPrefix = "pitchrank:leaderboard:"
	defaultMirrorTTL    = 5 * time.Minute
)

// Mirror replicates snapshots to Redis so sibling instances can reuse
// builds and restarts come up warm. The in-process cache stays
// authoritative; mirrored snapshots still age against the local TTL.
type Mirror struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// MirrorOption applies a configuration option to the Mirror.
type MirrorOption func(*Mirror)

// WithMirrorPrefix sets the Redis key prefix for mirrored snapshots.
func WithMirrorPrefix(prefix string) MirrorOption {
	return func(m *Mirror) {
		if prefix != "" {
			m.prefix = prefix
		}
	}
}

// WithMirrorTTL sets the Redis expiry for mirrored snapshots.
func WithMirrorTTL(d time.Duration) MirrorOption {
	return func(m *Mirror) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// NewMirror creates a snapshot mirror on an existing Redis client.
func NewMirror(client *redis.Client, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		client: client,
		prefix: defaultMirrorPrefix,
		ttl:    defaultMirrorTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish stores a snapshot under its partition key.
func (m *Mirror) Publish(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := m.client.Set(ctx, m.prefix+string(snap.Key), payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Fetch loads a mirrored snapshot. A partition nobody has built yet
// returns (nil, nil).
func (m *Mirror) Fetch(ctx context.Context, key model.PartitionKey) (*Snapshot, error) {
	payload, err := m.client.Get(ctx, m.prefix+string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Ping verifies the Redis connection.
func (m *Mirror) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
