// Package snapshot caches built leaderboard partitions for reads.
package snapshot

import "time"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets how long a snapshot counts as fresh.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock sets the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMirror attaches a cross-instance snapshot mirror.
func WithMirror(m *Mirror) Option {
	return func(c *Cache) {
		if m != nil {
			c.mirror = m
		}
	}
}
