// Package authorship defines domain types for per-line code authorship
// attribution: which lines of a document were written by a human and which
// were generated by an AI tool, along with prompt provenance.
package authorship

// DocumentID is the stable key identifying an open document (its location,
// typically a file URI). It is used as the cache and cancellation key
// throughout the system.
type DocumentID string

func (d DocumentID) String() string {
	return string(d)
}

// MessageRole identifies the speaker of a prompt message.
type MessageRole string

const (
	// RoleUser marks a message authored by the human driving the tool.
	RoleUser MessageRole = "user"

	// RoleAssistant marks a message authored by the tool itself.
	RoleAssistant MessageRole = "assistant"
)

// PromptMessage is one message in the conversation behind an AI-authored line.
type PromptMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// PromptRecord is the conversational context behind an AI-authored line.
// The pointer fields distinguish "absent" from "present but empty".
type PromptRecord struct {
	AgentModel        *string         `json:"agent_model,omitempty"`
	PairedHumanAuthor *string         `json:"paired_human_author,omitempty"`
	Messages          []PromptMessage `json:"messages,omitempty"`
}

// FirstUserMessage returns the text of the first user-role message in the
// record, if any. Only the first user message is ever surfaced to the editor.
func (r *PromptRecord) FirstUserMessage() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			return m.Content, true
		}
	}
	return "", false
}

// LineAuthorInfo describes the authorship of a single tracked line.
type LineAuthorInfo struct {
	// Author is the tool or human identifier for the line.
	Author string `json:"author"`

	// IsAIAuthored reports whether the line was generated by an AI tool.
	IsAIAuthored bool `json:"is_ai_authored"`

	// Prompt carries the prompt provenance for AI-authored lines, when known.
	Prompt *PromptRecord `json:"prompt,omitempty"`
}

// AttributionResult maps 1-based line numbers to authorship info for a whole
// document. Absence of a line number is authoritative: the line is
// human-authored, never "unknown". Only lines touched by a tracked change
// carry entries.
type AttributionResult map[int]LineAuthorInfo

// Line returns the entry for a 1-based line number. A nil result behaves
// like an empty one: every lookup misses, meaning human-authored.
func (r AttributionResult) Line(n int) (LineAuthorInfo, bool) {
	info, ok := r[n]
	return info, ok
}

// Record is the wire form of a document's attribution data, as ingested and
// served by the attribution API.
type Record struct {
	Document DocumentID        `json:"document"`
	Lines    AttributionResult `json:"lines"`
}
