// Package coordinator owns the request lifecycle for authorship data per
// open document: caching, single-flight fetch deduplication, cancellation,
// and invalidation on top of an attribution.Client.
//
// The coordinator is the only owner of the cache and the pending-fetch
// table. Callers never observe a fetch failure as an error; a failed or
// cancelled fetch resolves to a nil result and is logged here.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/eventstream"
)

// flight tracks one in-flight fetch. The context is detached from any
// single requester so that concurrent requesters share the same execution
// and only CancelForDocument or Close can abort it.
type flight struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Coordinator caches attribution results per document and deduplicates
// concurrent fetches for the same document into a single client call.
type Coordinator struct {
	client    attribution.Client
	logger    *zap.Logger
	publisher eventstream.Publisher

	group singleflight.Group

	// mu guards cache, pending, and closed.
	mu      sync.Mutex
	closed  bool
	cache   map[authorship.DocumentID]authorship.AttributionResult
	pending map[authorship.DocumentID]*flight
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithPublisher sets an eventstream publisher for fetch telemetry.
// Without one no events are emitted.
func WithPublisher(p eventstream.Publisher) Option {
	return func(c *Coordinator) {
		c.publisher = p
	}
}

// New creates a Coordinator fetching through the given client.
func New(client attribution.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:  client,
		logger:  zap.NewNop(),
		cache:   make(map[authorship.DocumentID]authorship.AttributionResult),
		pending: make(map[authorship.DocumentID]*flight),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestBlame returns the cached attribution result for doc immediately if
// present; otherwise it fetches through the client. Concurrent requesters
// for the same document attach to the same in-flight fetch rather than
// issuing duplicate client calls.
//
// The priority hint is forwarded to the client for scheduling among
// different documents; it does not affect correctness. When requesters
// racing on the same document carry different priorities, the first one in
// wins.
//
// On fetch failure or cancellation RequestBlame returns nil; errors never
// propagate to the caller. Cancelling ctx releases only this caller, not
// the shared fetch.
func (c *Coordinator) RequestBlame(ctx context.Context, doc authorship.DocumentID, priority attribution.Priority) authorship.AttributionResult {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	if result, ok := c.cache[doc]; ok {
		c.mu.Unlock()
		return result
	}

	fl, ok := c.pending[doc]
	if !ok {
		fctx, cancel := context.WithCancel(context.Background())
		fl = &flight{ctx: fctx, cancel: cancel}
		c.pending[doc] = fl
	}
	c.mu.Unlock()

	ch := c.group.DoChan(doc.String(), func() (any, error) {
		return c.fetch(fl.ctx, doc, priority)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil
		}
		result, _ := res.Val.(authorship.AttributionResult)
		return result

	case <-ctx.Done():
		return nil
	}
}

// fetch performs the client call and settles shared state. It runs inside
// the single-flight group, so it executes at most once per outstanding
// flight regardless of how many requesters attached.
func (c *Coordinator) fetch(fctx context.Context, doc authorship.DocumentID, priority attribution.Priority) (any, error) {
	start := time.Now()
	result, err := c.client.Fetch(fctx, doc, priority)

	c.mu.Lock()
	delete(c.pending, doc)
	if err == nil && !c.closed {
		// Population replaces any prior entry whole, exactly once per
		// successful fetch.
		c.cache[doc] = result
	}
	c.mu.Unlock()

	// Drop the completed call from the group so the next request for this
	// document starts a fresh fetch instead of attaching to this one.
	c.group.Forget(doc.String())

	c.publishFetch(doc, priority, time.Since(start), result, err != nil)

	if err != nil {
		c.logger.Warn("attribution fetch failed",
			zap.String("document", doc.String()),
			zap.String("priority", string(priority)),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("attribution fetch completed",
		zap.String("document", doc.String()),
		zap.Int("tracked_lines", len(result)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// Cached returns the cached result for doc without triggering a fetch.
func (c *Coordinator) Cached(doc authorship.DocumentID) (authorship.AttributionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.cache[doc]
	return result, ok
}

// Invalidate removes any cached entry for doc. An in-flight fetch is not
// cancelled; it is allowed to complete and populate a fresh entry.
func (c *Coordinator) Invalidate(doc authorship.DocumentID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, doc)
}

// CancelForDocument abandons the in-flight fetch for doc, if any. Requesters
// still awaiting it observe nil promptly; its result is never delivered or
// cached. A request issued after CancelForDocument starts a fresh fetch.
func (c *Coordinator) CancelForDocument(doc authorship.DocumentID) {
	c.mu.Lock()
	fl, ok := c.pending[doc]
	if ok {
		delete(c.pending, doc)
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	fl.cancel()
	c.group.Forget(doc.String())

	c.logger.Debug("attribution fetch cancelled", zap.String("document", doc.String()))
}

// Close cancels all outstanding fetches, clears the cache, and closes the
// client and publisher. The coordinator is unusable afterward: every
// subsequent RequestBlame returns nil.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	flights := make([]*flight, 0, len(c.pending))
	docs := make([]authorship.DocumentID, 0, len(c.pending))
	for doc, fl := range c.pending {
		flights = append(flights, fl)
		docs = append(docs, doc)
	}
	c.pending = make(map[authorship.DocumentID]*flight)
	c.cache = make(map[authorship.DocumentID]authorship.AttributionResult)
	c.mu.Unlock()

	for i, fl := range flights {
		fl.cancel()
		c.group.Forget(docs[i].String())
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.Warn("closing event publisher", zap.Error(err))
		}
	}

	return c.client.Close()
}

// publishFetch emits a fetch-completed event when a publisher is configured.
func (c *Coordinator) publishFetch(doc authorship.DocumentID, priority attribution.Priority, elapsed time.Duration, result authorship.AttributionResult, failed bool) {
	if c.publisher == nil {
		return
	}

	event := eventstream.NewFetchCompletedEvent(doc, priority, elapsed, result, failed)
	if err := c.publisher.PublishFetch(context.Background(), event); err != nil {
		c.logger.Warn("publishing fetch event",
			zap.String("document", doc.String()),
			zap.Error(err),
		)
	}
}
