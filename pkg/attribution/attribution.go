// Package attribution defines the client boundary to the attribution source:
// the external engine that inspects version-control history and classifies
// lines as human- or AI-authored.
//
// The engine behind the boundary is opaque. Implementations only need to
// answer "what is the authorship of every tracked line of this document",
// or fail. Clients are pluggable; pkg/attribution/remote talks to the inlay
// attribution API over HTTP, and tests inject in-memory fakes.
package attribution

import (
	"context"

	"github.com/papercomputeco/inlay/pkg/authorship"
)

// Priority is an advisory scheduling hint forwarded to the attribution
// source. It orders work between different documents and never affects
// correctness.
type Priority string

const (
	// PriorityHigh is used for interactive requests driven by a live
	// selection.
	PriorityHigh Priority = "high"

	// PriorityLow is used for background cache warming.
	PriorityLow Priority = "low"
)

// Client fetches authorship data for a document from the attribution source.
type Client interface {
	// Fetch returns the attribution result for every tracked line of doc.
	// The priority hint is forwarded for scheduling among different
	// documents. Fetch honors ctx cancellation.
	Fetch(ctx context.Context, doc authorship.DocumentID, priority Priority) (authorship.AttributionResult, error)

	// Close releases client resources.
	Close() error
}
