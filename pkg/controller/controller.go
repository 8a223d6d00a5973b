// Package controller reacts to editor lifecycle and selection events,
// drives the coordinator, and decides whether and for which document
// annotations are rendered.
//
// All state transitions run on one event-loop goroutine. Fetches resolve
// asynchronously and re-enter the loop as completion messages tagged with
// the document and a per-document generation; a completion is applied only
// after re-validating that the editor still shows the same document with a
// live multi-line selection. There is no locking because there is only one
// logical thread of control; correctness rests on that re-validation.
package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/coordinator"
	"github.com/papercomputeco/inlay/pkg/editor"
	"github.com/papercomputeco/inlay/pkg/render"
)

// completion is an internal message re-entering the event loop when an
// asynchronous fetch settles.
type completion struct {
	doc    authorship.DocumentID
	gen    uint64
	result authorship.AttributionResult
}

// Controller owns the selection lifecycle for one editor window.
type Controller struct {
	host       editor.Host
	coord      *coordinator.Coordinator
	prefetcher *coordinator.Prefetcher
	logger     *zap.Logger

	// Event-loop state. Touched only from Run's goroutine.
	activeDoc authorship.DocumentID
	sel       *editor.SelectionEvent
	rendered  *render.Set

	// gens tracks the latest pending fetch per document. Generation values
	// come from nextGen, a single monotonic counter, and are never reused:
	// a completion from an abandoned fetch can never carry the same
	// generation as a later dispatch for the same document. A completion
	// whose generation no longer matches was superseded and is dropped
	// before any further validation.
	gens    map[authorship.DocumentID]uint64
	nextGen uint64

	completions chan completion
	runCtx      context.Context
}

// Option configures a Controller.
type Option func(*Controller)

// WithPrefetcher enables background cache warming for documents that become
// active before any selection lands in them.
func WithPrefetcher(p *coordinator.Prefetcher) Option {
	return func(c *Controller) {
		c.prefetcher = p
	}
}

// New creates a Controller wired to the given host and coordinator.
func New(host editor.Host, coord *coordinator.Coordinator, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		host:        host,
		coord:       coord,
		logger:      logger,
		gens:        make(map[authorship.DocumentID]uint64),
		completions: make(chan completion, 16),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run processes host events until ctx is cancelled. It must be called
// exactly once; every state transition happens on this goroutine.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	c.logger.Info("annotation controller started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("annotation controller stopped")
			return ctx.Err()

		case ev := <-c.host.SelectionChanges():
			c.onSelectionChanged(ev)

		case ev := <-c.host.ActiveEditorChanges():
			c.onActiveEditorChanged(ev)

		case ev := <-c.host.DocumentSaves():
			c.onDocumentSaved(ev)

		case ev := <-c.host.DocumentCloses():
			c.onDocumentClosed(ev)

		case req := <-c.host.HoverRequests():
			c.onHover(req)

		case comp := <-c.completions:
			c.onCompletion(comp)
		}
	}
}

// onSelectionChanged handles the selection transition: multi-line
// selections render (from cache when possible, via fetch otherwise),
// anything narrower clears the view.
func (c *Controller) onSelectionChanged(ev editor.SelectionEvent) {
	if !ev.MultiLine() {
		// Single-line or empty: clear immediately. Any in-flight fetch
		// keeps running; its result stays useful for a re-selection.
		c.sel = nil
		c.clear()
		return
	}

	c.activeDoc = ev.Document
	sel := ev
	c.sel = &sel

	if result, ok := c.coord.Cached(ev.Document); ok {
		c.apply(render.Build(sel, result))
		return
	}

	c.apply(render.Loading(sel))
	c.dispatch(ev.Document)
}

// onActiveEditorChanged clears rendered annotations unconditionally: they
// belong to the previous editor's viewport. The coordinator cache for the
// previous document is left intact for later reuse.
func (c *Controller) onActiveEditorChanged(ev editor.ActiveEditorEvent) {
	c.clear()

	if ev.Document != c.activeDoc {
		c.sel = nil
		c.activeDoc = ev.Document
	}

	// Warm the cache for the newly active document so the first multi-line
	// selection can render without a fetch round-trip.
	if c.prefetcher != nil && ev.Document != "" {
		if _, ok := c.coord.Cached(ev.Document); !ok {
			c.prefetcher.Enqueue(ev.Document)
		}
	}
}

// onDocumentSaved invalidates the cache for the saved document and, when it
// is on screen with a live multi-line selection, re-fetches so the view
// reflects post-edit attribution.
func (c *Controller) onDocumentSaved(ev editor.DocumentEvent) {
	c.coord.Invalidate(ev.Document)

	if c.activeDoc != ev.Document || c.sel == nil || !c.sel.MultiLine() {
		return
	}

	c.apply(render.Loading(*c.sel))
	c.dispatch(ev.Document)
}

// onDocumentClosed abandons any in-flight fetch and drops all state tied to
// the closed document.
func (c *Controller) onDocumentClosed(ev editor.DocumentEvent) {
	c.coord.CancelForDocument(ev.Document)
	c.coord.Invalidate(ev.Document)
	delete(c.gens, ev.Document)

	if c.activeDoc == ev.Document {
		c.activeDoc = ""
		c.sel = nil
		c.clear()
	}
}

// onHover answers a hover request against the last rendered set. Every
// request gets exactly one reply; nil means no content.
func (c *Controller) onHover(req editor.HoverRequest) {
	var hover *editor.Hover
	if c.rendered != nil && c.rendered.Document() == req.Document {
		hover = c.rendered.ResolveHover(req.Position)
	}

	select {
	case req.Reply <- hover:
	default:
		c.logger.Warn("hover reply dropped", zap.String("document", req.Document.String()))
	}
}

// onCompletion re-validates a settled fetch against current state before
// rendering. A completion for a superseded generation, a different active
// document, or a selection that is no longer multi-line is discarded; the
// result stays cached in the coordinator for reuse.
func (c *Controller) onCompletion(comp completion) {
	if c.gens[comp.doc] != comp.gen {
		c.logger.Debug("discarding superseded fetch completion",
			zap.String("document", comp.doc.String()),
		)
		return
	}
	delete(c.gens, comp.doc)

	if c.activeDoc != comp.doc || c.sel == nil || c.sel.Document != comp.doc || !c.sel.MultiLine() {
		c.logger.Debug("discarding stale fetch completion",
			zap.String("document", comp.doc.String()),
		)
		return
	}

	// Render against the current selection, which may have moved while the
	// fetch was outstanding. A nil result renders every line as human.
	c.apply(render.Build(*c.sel, comp.result))
}

// dispatch issues a high-priority fetch for doc and routes its completion
// back into the event loop, stamped with a fresh generation.
func (c *Controller) dispatch(doc authorship.DocumentID) {
	c.nextGen++
	gen := c.nextGen
	c.gens[doc] = gen
	ctx := c.runCtx

	go func() {
		result := c.coord.RequestBlame(ctx, doc, attribution.PriorityHigh)

		select {
		case c.completions <- completion{doc: doc, gen: gen, result: result}:
		case <-ctx.Done():
		}
	}()
}

// apply pushes a rendered set to the host and retains it for hover
// resolution.
func (c *Controller) apply(set *render.Set) {
	if err := c.host.SetAnnotations(set.Document(), set.Annotations()); err != nil {
		c.logger.Warn("setting annotations",
			zap.String("document", set.Document().String()),
			zap.Error(err),
		)
		return
	}

	c.rendered = set
}

// clear removes all annotations from the host.
func (c *Controller) clear() {
	if err := c.host.ClearAnnotations(); err != nil {
		c.logger.Warn("clearing annotations", zap.Error(err))
	}

	c.rendered = nil
}
