// Package stdio adapts an editor extension speaking newline-delimited JSON
// over a pipe (normally stdin/stdout) into an editor.Host.
//
// Each inbound line is one event object; each outbound line is one
// rendering instruction. The protocol is deliberately flat so a thin
// extension can forward its editor's native events without buffering.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/editor"
)

// Inbound message types.
const (
	msgSelectionChanged    = "selection_changed"
	msgActiveEditorChanged = "active_editor_changed"
	msgDocumentSaved       = "document_saved"
	msgDocumentClosed      = "document_closed"
	msgHover               = "hover"
	msgCommand             = "command"
)

// Outbound message types.
const (
	msgSetAnnotations    = "set_annotations"
	msgClearAnnotations  = "clear_annotations"
	msgHoverResult       = "hover_result"
	msgCommandRegistered = "command_registered"
)

const eventBuffer = 16

// inbound is the union of all inbound message shapes.
type inbound struct {
	Type        string `json:"type"`
	Document    string `json:"document,omitempty"`
	StartLine   int    `json:"start_line,omitempty"`
	EndLine     int    `json:"end_line,omitempty"`
	LineLengths []int  `json:"line_lengths,omitempty"`
	ID          string `json:"id,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Command     string `json:"command,omitempty"`
}

// outbound is the union of all outbound message shapes.
type outbound struct {
	Type        string              `json:"type"`
	ID          string              `json:"id,omitempty"`
	Document    string              `json:"document,omitempty"`
	Annotations []editor.Annotation `json:"annotations,omitempty"`
	Hover       *editor.Hover       `json:"hover,omitempty"`
	Command     string              `json:"command,omitempty"`
}

// Host implements editor.Host over a line-oriented JSON pipe.
type Host struct {
	reader io.Reader
	logger *zap.Logger

	// wmu serializes outbound writes; hover replies are written from their
	// own goroutines.
	wmu    sync.Mutex
	writer io.Writer

	selections chan editor.SelectionEvent
	actives    chan editor.ActiveEditorEvent
	saves      chan editor.DocumentEvent
	closes     chan editor.DocumentEvent
	hovers     chan editor.HoverRequest

	cmdMu    sync.Mutex
	commands map[string]func()
}

// NewHost creates a Host reading events from r and writing instructions to w.
func NewHost(r io.Reader, w io.Writer, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Host{
		reader:     r,
		writer:     w,
		logger:     logger,
		selections: make(chan editor.SelectionEvent, eventBuffer),
		actives:    make(chan editor.ActiveEditorEvent, eventBuffer),
		saves:      make(chan editor.DocumentEvent, eventBuffer),
		closes:     make(chan editor.DocumentEvent, eventBuffer),
		hovers:     make(chan editor.HoverRequest, eventBuffer),
		commands:   make(map[string]func()),
	}
}

// Run reads inbound events until EOF or ctx cancellation. Malformed lines
// are logged and skipped; the stream stays usable.
func (h *Host) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(h.reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg inbound
		if err := json.Unmarshal(line, &msg); err != nil {
			h.logger.Warn("skipping malformed host message", zap.Error(err))
			continue
		}

		if err := h.deliver(ctx, msg); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading host stream: %w", err)
	}

	return nil
}

// deliver routes one inbound message to its event stream.
func (h *Host) deliver(ctx context.Context, msg inbound) error {
	switch msg.Type {
	case msgSelectionChanged:
		return send(ctx, h.selections, editor.SelectionEvent{
			Document:    authorship.DocumentID(msg.Document),
			StartLine:   msg.StartLine,
			EndLine:     msg.EndLine,
			LineLengths: msg.LineLengths,
		})

	case msgActiveEditorChanged:
		return send(ctx, h.actives, editor.ActiveEditorEvent{
			Document: authorship.DocumentID(msg.Document),
		})

	case msgDocumentSaved:
		return send(ctx, h.saves, editor.DocumentEvent{
			Document: authorship.DocumentID(msg.Document),
		})

	case msgDocumentClosed:
		return send(ctx, h.closes, editor.DocumentEvent{
			Document: authorship.DocumentID(msg.Document),
		})

	case msgHover:
		return h.deliverHover(ctx, msg)

	case msgCommand:
		h.invokeCommand(msg.Command)
		return nil

	default:
		h.logger.Warn("skipping unknown host message", zap.String("type", msg.Type))
		return nil
	}
}

// deliverHover forwards a hover request and writes the reply back once the
// consumer answers.
func (h *Host) deliverHover(ctx context.Context, msg inbound) error {
	reply := make(chan *editor.Hover, 1)

	req := editor.HoverRequest{
		Document: authorship.DocumentID(msg.Document),
		Position: editor.Position{Line: msg.Line, Column: msg.Column},
		Reply:    reply,
	}

	if err := send(ctx, h.hovers, req); err != nil {
		return err
	}

	go func() {
		select {
		case hover := <-reply:
			h.write(outbound{Type: msgHoverResult, ID: msg.ID, Hover: hover})
		case <-ctx.Done():
		}
	}()

	return nil
}

// invokeCommand runs a registered command handler, if any.
func (h *Host) invokeCommand(name string) {
	h.cmdMu.Lock()
	handler, ok := h.commands[name]
	h.cmdMu.Unlock()

	if !ok {
		h.logger.Warn("unknown command invoked", zap.String("command", name))
		return
	}

	handler()
}

func send[T any](ctx context.Context, ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectionChanges implements editor.Host.
func (h *Host) SelectionChanges() <-chan editor.SelectionEvent {
	return h.selections
}

// ActiveEditorChanges implements editor.Host.
func (h *Host) ActiveEditorChanges() <-chan editor.ActiveEditorEvent {
	return h.actives
}

// DocumentSaves implements editor.Host.
func (h *Host) DocumentSaves() <-chan editor.DocumentEvent {
	return h.saves
}

// DocumentCloses implements editor.Host.
func (h *Host) DocumentCloses() <-chan editor.DocumentEvent {
	return h.closes
}

// HoverRequests implements editor.Host.
func (h *Host) HoverRequests() <-chan editor.HoverRequest {
	return h.hovers
}

// SetAnnotations replaces the rendered annotations for doc.
func (h *Host) SetAnnotations(doc authorship.DocumentID, annotations []editor.Annotation) error {
	return h.write(outbound{
		Type:        msgSetAnnotations,
		ID:          uuid.NewString(),
		Document:    doc.String(),
		Annotations: annotations,
	})
}

// ClearAnnotations removes all rendered annotations.
func (h *Host) ClearAnnotations() error {
	return h.write(outbound{
		Type: msgClearAnnotations,
		ID:   uuid.NewString(),
	})
}

// RegisterCommand registers a named command and tells the extension to
// surface it.
func (h *Host) RegisterCommand(name string, handler func()) error {
	h.cmdMu.Lock()
	h.commands[name] = handler
	h.cmdMu.Unlock()

	return h.write(outbound{Type: msgCommandRegistered, Command: name})
}

// write marshals and writes one outbound line.
func (h *Host) write(msg outbound) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling host message: %w", err)
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()

	if _, err := h.writer.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("writing host message: %w", err)
	}

	return nil
}
