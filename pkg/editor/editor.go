// Package editor abstracts the host editor: the event streams the
// annotation engine reacts to and the rendering primitives it drives.
//
// The engine never talks to a concrete editor directly. A Host
// implementation adapts a real editor surface (pkg/editor/stdio speaks
// newline-delimited JSON to an extension process) and tests substitute a
// channel-backed fake.
package editor

import "github.com/papercomputeco/inlay/pkg/authorship"

// Host is the boundary to the editor. It exposes four named event streams
// plus hover requests, and accepts decoration updates back.
type Host interface {
	// SelectionChanges emits an event whenever the selection in the active
	// editor changes.
	SelectionChanges() <-chan SelectionEvent

	// ActiveEditorChanges emits an event whenever a different editor
	// becomes active, including activation of an editor for a new document.
	ActiveEditorChanges() <-chan ActiveEditorEvent

	// DocumentSaves emits an event whenever an open document is saved.
	DocumentSaves() <-chan DocumentEvent

	// DocumentCloses emits an event whenever an open document is closed.
	DocumentCloses() <-chan DocumentEvent

	// HoverRequests emits a request whenever the editor asks for hover
	// content at a cursor position. The consumer answers on Reply; nil
	// means no hover content.
	HoverRequests() <-chan HoverRequest

	// SetAnnotations replaces the rendered annotations for doc.
	SetAnnotations(doc authorship.DocumentID, annotations []Annotation) error

	// ClearAnnotations removes all rendered annotations.
	ClearAnnotations() error

	// RegisterCommand registers a named command with the editor. The
	// handler runs on the host's delivery goroutine.
	RegisterCommand(name string, handler func()) error
}

// Position is a cursor position in a document. Line and Column are 0-based
// editor coordinates.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SelectionEvent describes the selection in the active editor after a
// change. StartLine and EndLine are 0-based and inclusive.
type SelectionEvent struct {
	Document  authorship.DocumentID `json:"document"`
	StartLine int                   `json:"start_line"`
	EndLine   int                   `json:"end_line"`

	// LineLengths holds the character length of each selected line, in
	// order from StartLine to EndLine. Annotations anchor at end-of-line,
	// so the engine needs these to place anchors and answer hover
	// membership. Missing entries anchor at column zero.
	LineLengths []int `json:"line_lengths,omitempty"`
}

// MultiLine reports whether the selection spans at least two lines.
func (e SelectionEvent) MultiLine() bool {
	return e.EndLine > e.StartLine
}

// AnchorColumn returns the end-of-line anchor column for a 0-based editor
// line inside the selection.
func (e SelectionEvent) AnchorColumn(line int) int {
	i := line - e.StartLine
	if i < 0 || i >= len(e.LineLengths) {
		return 0
	}
	return e.LineLengths[i]
}

// ActiveEditorEvent describes a change of the active editor. An empty
// Document means no editor is active.
type ActiveEditorEvent struct {
	Document authorship.DocumentID `json:"document"`
}

// DocumentEvent carries the document a save or close event refers to.
type DocumentEvent struct {
	Document authorship.DocumentID `json:"document"`
}

// HoverRequest asks for hover content at a cursor position. Reply is
// buffered; the consumer sends exactly one answer, nil for "no content".
type HoverRequest struct {
	Document authorship.DocumentID
	Position Position
	Reply    chan<- *Hover
}

// Annotation is one renderable line decoration: trailing text anchored at
// the end of a 0-based editor line.
type Annotation struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// Hover is rich content answering a hover request.
type Hover struct {
	Markdown string `json:"markdown"`
}
