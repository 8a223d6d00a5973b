// Package kafka provides a Kafka-backed eventstream publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/papercomputeco/inlay/pkg/eventstream"
)

// DefaultTopic is the topic fetch events are published to unless overridden.
const DefaultTopic = "inlay.attribution.events"

// Publisher writes fetch events to a Kafka topic, keyed by document so that
// per-document ordering is preserved across partitions.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers and topic. An empty
// topic selects DefaultTopic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishFetch marshals the event as JSON and writes it keyed by document.
func (p *Publisher) PublishFetch(ctx context.Context, event *eventstream.FetchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilFetchEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling fetch event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Document),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing fetch event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
