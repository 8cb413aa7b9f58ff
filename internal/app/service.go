// Package service provides the core business service that implements
// the dependencies required by the HTTP API: result intake, the
// verification lifecycle, per-player statistics, and leaderboard reads.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lfalegacy/pitchrank/internal/adapters/refresh"
	"github.com/lfalegacy/pitchrank/internal/adapters/repository"
	"github.com/lfalegacy/pitchrank/internal/adapters/snapshot"
	"github.com/lfalegacy/pitchrank/internal/domain/dedupe"
	"github.com/lfalegacy/pitchrank/internal/domain/leaderboard"
	"github.com/lfalegacy/pitchrank/internal/domain/stats"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

// Default configuration values.
const (
	defaultDBDriver     = repository.DriverSQLite
	defaultDBDSN        = "pitchrank.db"
	defaultSnapshotTTL  = 5 * time.Second
	defaultBoardLimit   = 50
	maxBoardLimit       = 100
	defaultPageSize     = 50
	maxPageSize         = 100
	defaultRefreshQueue = 1024
	defaultDedupeSize   = 500_000
	defaultDecay        = 0.9
	defaultWinThreshold = 50.0
	stopTimeout         = 30 * time.Second
	userLockStripes     = 64
)

// Service implements the API dependencies for the results and
// leaderboard subsystem.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	agg     *stats.Aggregator
	builder *leaderboard.Builder
	cache   *snapshot.Cache
	queue   *refresh.Queue
	pool    *refresh.Pool
	redis   *redis.Client

	// Storage configuration
	dbDriver string
	dbDSN    string

	// Snapshot mirror configuration
	redisAddr     string
	redisPassword string
	redisDB       int

	// Aggregation configuration
	winThresholds    map[string]float64
	defaultThreshold float64
	recencyDecay     float64

	// Read-path configuration
	snapshotTTL  time.Duration
	boardDefault int
	boardMax     int
	pageMax      int

	// Refresh configuration
	refreshQueueSize int
	refreshWorkers   int
	dedupeSize       int

	// Statistics recomputes for the same player serialize on a striped
	// lock so optimistic version conflicts stay rare.
	userLocks [userLockStripes]sync.Mutex

	clock func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabase sets the storage driver and DSN.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.dbDriver = driver
		}
		if dsn != "" {
			s.dbDSN = dsn
		}
	}
}

// WithStore injects an already-open store, bypassing WithDatabase.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRedisMirror enables the cross-instance snapshot mirror.
func WithRedisMirror(addr, password string, db int) Option {
	return func(s *Service) {
		s.redisAddr = addr
		s.redisPassword = password
		s.redisDB = db
	}
}

// WithWinThresholds sets the per-game-type win thresholds.
func WithWinThresholds(thresholds map[string]float64, defaultThreshold float64) Option {
	return func(s *Service) {
		if thresholds != nil {
			s.winThresholds = thresholds
		}
		if defaultThreshold > 0 {
			s.defaultThreshold = defaultThreshold
		}
	}
}

// WithRecencyDecay sets the decay factor for recency-weighted averages.
func WithRecencyDecay(decay float64) Option {
	return func(s *Service) {
		if decay > 0 && decay <= 1 {
			s.recencyDecay = decay
		}
	}
}

// WithSnapshotTTL sets how long a leaderboard snapshot counts as fresh.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.snapshotTTL = ttl
		}
	}
}

// WithLeaderboardLimits sets the default and maximum leaderboard page size.
func WithLeaderboardLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.boardDefault = def
		}
		if max > 0 {
			s.boardMax = max
		}
	}
}

// WithMaxPageSize sets the maximum page size for result listings.
func WithMaxPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageMax = size
		}
	}
}

// WithRefreshQueueSize sets the capacity of the rebuild queue.
func WithRefreshQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.refreshQueueSize = size
		}
	}
}

// WithRefreshWorkers sets the number of rebuild worker goroutines.
func WithRefreshWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.refreshWorkers = count
		}
	}
}

// WithDedupeSize sets the size of the session deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbDriver:         defaultDBDriver,
		dbDSN:            defaultDBDSN,
		winThresholds:    nil, // Aggregator applies its own defaults
		defaultThreshold: defaultWinThreshold,
		recencyDecay:     defaultDecay,
		snapshotTTL:      defaultSnapshotTTL,
		boardDefault:     defaultBoardLimit,
		boardMax:         maxBoardLimit,
		pageMax:          maxPageSize,
		refreshQueueSize: defaultRefreshQueue,
		refreshWorkers:   runtime.NumCPU(),
		dedupeSize:       defaultDedupeSize,
		clock:            time.Now,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting results service...")

	// Open storage unless a store was injected
	if s.store == nil {
		store, err := repository.Open(ctx, s.dbDriver, s.dbDSN)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		s.store = store
	}
	s.logger.Info(ctx, "result store ready", logger.String("driver", s.dbDriver))

	s.deduper = dedupe.NewSessionDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.agg = stats.New(
		stats.WithWinThresholds(s.winThresholds, s.defaultThreshold),
		stats.WithRecencyDecay(s.recencyDecay),
		stats.WithClock(s.clock),
	)
	s.builder = leaderboard.New(
		leaderboard.WithAggregator(s.agg),
	)

	cacheOpts := []snapshot.Option{
		snapshot.WithTTL(s.snapshotTTL),
		snapshot.WithClock(s.clock),
	}
	if s.redisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     s.redisAddr,
			Password: s.redisPassword,
			DB:       s.redisDB,
		})
		mirror := snapshot.NewMirror(s.redis)
		if err := mirror.Ping(ctx); err != nil {
			s.logger.Warn(ctx, "snapshot mirror unreachable, serving from local cache only",
				logger.String("addr", s.redisAddr),
				logger.Error(err),
			)
			_ = s.redis.Close()
			s.redis = nil
		} else {
			cacheOpts = append(cacheOpts, snapshot.WithMirror(mirror))
			s.logger.Info(ctx, "snapshot mirror enabled", logger.String("addr", s.redisAddr))
		}
	}
	s.cache = snapshot.NewCache(cacheOpts...)

	// Create and start the rebuild pipeline; the service itself is the
	// rebuilder.
	s.queue = refresh.NewQueue(
		refresh.WithCapacity(s.refreshQueueSize),
	)
	s.pool = refresh.NewPool(s.refreshWorkers, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "results service started",
		logger.Int("refreshWorkers", s.refreshWorkers),
		logger.Int("refreshQueueSize", s.refreshQueueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("snapshotTTL", s.snapshotTTL),
	)

	return nil
}

// Stop gracefully shuts down the service. Queued leaderboard rebuilds
// drain before the store closes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping results service...")

	// Stop the rebuild pool first so workers finish against an open store
	if s.pool != nil {
		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		if err := s.pool.Stop(stopCtx); err != nil {
			s.logger.Warn(ctx, "refresh pool did not drain cleanly", logger.Error(err))
		}
		cancel()
	}

	// Close result store
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing result store", logger.Error(err))
		}
	}

	// Close mirror connection
	if s.redis != nil {
		_ = s.redis.Close()
		s.redis = nil
	}

	s.started = false
	s.logger.Info(ctx, "results service stopped")
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return fmt.Errorf("service not started")
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":              s.started,
		"databaseDriver":       s.dbDriver,
		"refreshWorkers":       s.refreshWorkers,
		"refreshQueueCapacity": s.refreshQueueSize,
		"dedupeSize":           s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len()
		cachedPartitions := s.cache.Len()

		stats["refreshQueueLength"] = queueLen
		stats["cachedPartitions"] = cachedPartitions
		stats["dedupeEntries"] = s.deduper.Size()
		stats["mirrorEnabled"] = s.redis != nil

		// Update metrics
		metrics.UpdateRefreshQueueDepth(queueLen)
	}

	return stats
}

// userLock returns the stripe lock for a player id.
func (s *Service) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.userLocks[h.Sum32()%userLockStripes]
}

// clampPage normalizes a limit/offset pair against a default and a cap.
func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
