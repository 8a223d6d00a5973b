package nop

import (
	"context"

	"github.com/papercomputeco/inlay/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishFetch validates input and otherwise does nothing.
func (p *Publisher) PublishFetch(_ context.Context, event *eventstream.FetchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilFetchEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
