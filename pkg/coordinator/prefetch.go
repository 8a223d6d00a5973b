package coordinator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
)

// PrefetchConfig is the configuration options for the prefetch pool.
type PrefetchConfig struct {
	// Coordinator is the coordinator whose cache the pool warms.
	Coordinator *Coordinator

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered document channel (defaults to 64).
	QueueSize uint

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Prefetcher warms the coordinator cache in the background at low priority.
// The host feeds it documents that just became visible so that a later
// multi-line selection can render from cache without a fetch round-trip.
type Prefetcher struct {
	config *PrefetchConfig
	queue  chan authorship.DocumentID
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPrefetcher creates a new Prefetcher and starts its worker goroutines.
func NewPrefetcher(c *PrefetchConfig) (*Prefetcher, error) {
	if c.Coordinator == nil {
		return nil, fmt.Errorf("prefetcher requires a coordinator")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	p := &Prefetcher{
		config: c,
		queue:  make(chan authorship.DocumentID, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a document for background warming.
// Returns true if enqueued, false if the queue is full and the document was
// dropped. Dropping is harmless: a live selection always issues its own
// high-priority request.
func (p *Prefetcher) Enqueue(doc authorship.DocumentID) bool {
	select {
	case p.queue <- doc:
		p.logger.Debug("prefetch queued", zap.String("document", doc.String()))
		return true
	default:
		p.logger.Debug("prefetch dropped, queue full", zap.String("document", doc.String()))
		return false
	}
}

// Close signals workers to stop and waits for in-flight prefetches to drain.
func (p *Prefetcher) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker continuously pulls documents off the queue and warms the cache.
func (p *Prefetcher) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("prefetch worker started", zap.Uint("worker_id", id))

	for doc := range p.queue {
		if _, ok := p.config.Coordinator.Cached(doc); ok {
			continue
		}

		p.config.Coordinator.RequestBlame(context.Background(), doc, attribution.PriorityLow)
	}

	p.logger.Debug("prefetch worker stopped", zap.Uint("worker_id", id))
}
