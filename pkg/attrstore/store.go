// Package attrstore defines storage for attribution records served by the
// inlay API. A record maps every tracked line of a document to its
// authorship; records are replaced whole, never patched line by line.
package attrstore

import (
	"context"

	"github.com/papercomputeco/inlay/pkg/authorship"
)

// Store persists and retrieves attribution records keyed by document.
type Store interface {
	// Put stores the attribution result for doc, atomically replacing any
	// prior record for the same document.
	Put(ctx context.Context, doc authorship.DocumentID, result authorship.AttributionResult) error

	// Get retrieves the attribution result for doc. Returns ErrNotFound
	// if no record exists.
	Get(ctx context.Context, doc authorship.DocumentID) (authorship.AttributionResult, error)

	// Delete removes the record for doc, if any. Deleting a missing record
	// is a no-op.
	Delete(ctx context.Context, doc authorship.DocumentID) error

	// Close closes the store and releases any resources.
	Close() error
}
