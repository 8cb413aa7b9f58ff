package refresh

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/pkg/logger"
	"github.com/lfalegacy/pitchrank/pkg/metrics"
)

const defaultWorkerCount = 4

// Rebuilder rebuilds one leaderboard partition and publishes the
// resulting snapshot.
type Rebuilder interface {
	Rebuild(ctx context.Context, key model.PartitionKey) error
}

// Pool runs a fixed set of workers draining the rebuild queue.
type Pool struct {
	queue     *Queue
	rebuilder Rebuilder
	workers   int

	wg     sync.WaitGroup
	logger logger.Logger
}

// NewPool creates a worker pool over a rebuild queue.
func NewPool(workers int, q *Queue, r Rebuilder, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = defaultWorkerCount
	}
	p := &Pool{
		queue:     q,
		rebuilder: r,
		workers:   workers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. They exit when the queue closes and
// drains, or when ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	if p.logger == nil {
		p.logger = logger.Get().Named("refresh")
	}
	metrics.UpdateRefreshWorkerActive(p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (p *Pool) Stop(ctx context.Context) error {
	_ = p.queue.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		metrics.UpdateRefreshWorkerActive(0)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrStopTimeout, ctx.Err())
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.Named("worker-" + strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-p.queue.Dequeue():
			if !ok {
				return
			}
			// Claim before rebuilding: a write that lands from here on
			// must queue its own rebuild.
			p.queue.Claim(key)
			p.rebuild(ctx, log, key)
		}
	}
}

func (p *Pool) rebuild(ctx context.Context, log logger.Logger, key model.PartitionKey) {
	start := time.Now()
	err := p.rebuilder.Rebuild(ctx, key)
	metrics.RecordRefreshLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRefreshError()
		metrics.RecordErrorByComponent("refresh", "rebuild_failed")
		log.Error(ctx, "partition rebuild failed",
			logger.String("partition", string(key)),
			logger.Error(err),
		)
		return
	}
	log.Debug(ctx, "partition rebuilt",
		logger.String("partition", string(key)),
		logger.Duration("took", time.Since(start)),
	)
}
