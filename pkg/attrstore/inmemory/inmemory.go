// Package inmemory provides a map-backed attrstore.Store for tests and
// ephemeral serving.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

// Store implements attrstore.Store using an in-memory map.
type Store struct {
	// mu guards records.
	mu sync.RWMutex

	// records maps document key to its last ingested attribution result.
	records map[authorship.DocumentID]authorship.AttributionResult
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[authorship.DocumentID]authorship.AttributionResult),
	}
}

// Put stores the result for doc, replacing any prior record whole.
func (s *Store) Put(_ context.Context, doc authorship.DocumentID, result authorship.AttributionResult) error {
	if doc == "" {
		return errors.New("cannot store record for empty document")
	}

	// Copy so later caller mutation cannot corrupt the stored record.
	stored := make(authorship.AttributionResult, len(result))
	for line, info := range result {
		stored[line] = info
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[doc] = stored
	return nil
}

// Get retrieves the result for doc.
func (s *Store) Get(_ context.Context, doc authorship.DocumentID) (authorship.AttributionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[doc]
	if !ok {
		return nil, attrstore.ErrNotFound{Document: doc.String()}
	}

	out := make(authorship.AttributionResult, len(record))
	for line, info := range record {
		out[line] = info
	}

	return out, nil
}

// Delete removes the record for doc.
func (s *Store) Delete(_ context.Context, doc authorship.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, doc)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
