package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeFetchCompleted is emitted after an attribution fetch settles,
	// whether it populated the cache or failed.
	EventTypeFetchCompleted = "inlay.attribution.fetch.completed"
)

// FetchCompletedEvent is a transport-neutral event payload describing one
// settled attribution fetch.
type FetchCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Document   string `json:"document"`
	Priority   string `json:"priority"`
	DurationMs int64  `json:"duration_ms"`

	// LineCount is the number of tracked lines in the result. Zero for
	// failed fetches and for documents with no tracked changes.
	LineCount int `json:"line_count"`

	// Failed reports that the fetch resolved to no result.
	Failed bool `json:"failed"`
}

// NewFetchCompletedEvent builds a v1 fetch-completed event for the given
// fetch outcome. A nil result with failed set marks a fetch that resolved
// to nothing.
func NewFetchCompletedEvent(doc authorship.DocumentID, priority attribution.Priority, duration time.Duration, result authorship.AttributionResult, failed bool) *FetchCompletedEvent {
	return &FetchCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeFetchCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Document:      doc.String(),
		Priority:      string(priority),
		DurationMs:    duration.Milliseconds(),
		LineCount:     len(result),
		Failed:        failed,
	}
}
