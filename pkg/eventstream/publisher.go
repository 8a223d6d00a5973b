package eventstream

import "context"

// Publisher publishes fetch events to an event stream backend.
type Publisher interface {
	PublishFetch(ctx context.Context, event *FetchCompletedEvent) error
	Close() error
}
