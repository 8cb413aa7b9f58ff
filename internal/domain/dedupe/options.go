package dedupe

// Option applies a configuration option to the session deduper.
type Option func(*sessionDeduper)

// WithMaxSize bounds the definite set and sizes the bloom filter.
// If maxSize > 0: bounded mode with FIFO eviction.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *sessionDeduper) {
		d.maxSize = maxSize
	}
}

// WithFalsePositiveRate sets the bloom filter false positive rate.
// Must be in (0,1); out-of-range values keep the default.
func WithFalsePositiveRate(rate float64) Option {
	return func(d *sessionDeduper) {
		if rate > 0 && rate < 1 {
			d.fpRate = rate
		}
	}
}
