// Package testutils provides fakes shared across test suites.
package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

// MockAttributionClient is a scriptable attribution.Client that records
// calls and can block or fail on demand.
type MockAttributionClient struct {
	mu sync.Mutex

	// Results maps document to the result Fetch returns for it.
	Results map[authorship.DocumentID]authorship.AttributionResult

	// FailWith, when set, is returned by every Fetch.
	FailWith error

	// Gate, when non-nil, blocks Fetch until closed or the context is
	// cancelled. Lets tests hold a fetch in flight.
	Gate chan struct{}

	fetches   []FetchCall
	closed    bool
	closeOnce sync.Once
}

// FetchCall records one Fetch invocation.
type FetchCall struct {
	Document authorship.DocumentID
	Priority attribution.Priority
}

func NewMockAttributionClient() *MockAttributionClient {
	return &MockAttributionClient{
		Results: make(map[authorship.DocumentID]authorship.AttributionResult),
	}
}

func (m *MockAttributionClient) Fetch(
	ctx context.Context,
	doc authorship.DocumentID,
	priority attribution.Priority,
) (authorship.AttributionResult, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, FetchCall{Document: doc, Priority: priority})
	gate := m.Gate
	failWith := m.FailWith
	result := m.Results[doc]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failWith != nil {
		return nil, failWith
	}

	return result, nil
}

func (m *MockAttributionClient) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
	})

	return nil
}

// FetchCount reports how many times Fetch was called.
func (m *MockAttributionClient) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.fetches)
}

// Fetches returns a copy of all recorded Fetch calls.
func (m *MockAttributionClient) Fetches() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]FetchCall, len(m.fetches))
	copy(out, m.fetches)

	return out
}

// Closed reports whether Close has been called.
func (m *MockAttributionClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
