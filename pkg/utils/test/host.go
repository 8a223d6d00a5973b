package testutils

import (
	"sync"

	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/editor"
)

// MockHost is a channel-backed editor.Host for driving the controller in
// tests. Tests push events into the exported channels and inspect the
// recorded render calls.
type MockHost struct {
	Selections chan editor.SelectionEvent
	Actives    chan editor.ActiveEditorEvent
	Saves      chan editor.DocumentEvent
	Closes     chan editor.DocumentEvent
	Hovers     chan editor.HoverRequest

	mu       sync.Mutex
	sets     []SetCall
	clears   int
	commands map[string]func()

	// Rendered signals after every SetAnnotations or ClearAnnotations so
	// tests can wait for the controller to act without polling.
	Rendered chan struct{}
}

// SetCall records one SetAnnotations invocation.
type SetCall struct {
	Document    authorship.DocumentID
	Annotations []editor.Annotation
}

func NewMockHost() *MockHost {
	return &MockHost{
		Selections: make(chan editor.SelectionEvent, 16),
		Actives:    make(chan editor.ActiveEditorEvent, 16),
		Saves:      make(chan editor.DocumentEvent, 16),
		Closes:     make(chan editor.DocumentEvent, 16),
		Hovers:     make(chan editor.HoverRequest, 16),
		Rendered:   make(chan struct{}, 64),
		commands:   make(map[string]func()),
	}
}

func (m *MockHost) SelectionChanges() <-chan editor.SelectionEvent {
	return m.Selections
}

func (m *MockHost) ActiveEditorChanges() <-chan editor.ActiveEditorEvent {
	return m.Actives
}

func (m *MockHost) DocumentSaves() <-chan editor.DocumentEvent {
	return m.Saves
}

func (m *MockHost) DocumentCloses() <-chan editor.DocumentEvent {
	return m.Closes
}

func (m *MockHost) HoverRequests() <-chan editor.HoverRequest {
	return m.Hovers
}

func (m *MockHost) SetAnnotations(doc authorship.DocumentID, annotations []editor.Annotation) error {
	m.mu.Lock()
	anns := make([]editor.Annotation, len(annotations))
	copy(anns, annotations)
	m.sets = append(m.sets, SetCall{Document: doc, Annotations: anns})
	m.mu.Unlock()

	m.Rendered <- struct{}{}

	return nil
}

func (m *MockHost) ClearAnnotations() error {
	m.mu.Lock()
	m.clears++
	m.mu.Unlock()

	m.Rendered <- struct{}{}

	return nil
}

func (m *MockHost) RegisterCommand(name string, handler func()) error {
	m.mu.Lock()
	m.commands[name] = handler
	m.mu.Unlock()

	return nil
}

// Sets returns a copy of all recorded SetAnnotations calls.
func (m *MockHost) Sets() []SetCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SetCall, len(m.sets))
	copy(out, m.sets)

	return out
}

// LastSet returns the most recent SetAnnotations call, if any.
func (m *MockHost) LastSet() (SetCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sets) == 0 {
		return SetCall{}, false
	}

	return m.sets[len(m.sets)-1], true
}

// ClearCount reports how many times ClearAnnotations was called.
func (m *MockHost) ClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.clears
}

// Command returns the registered handler for name, if any.
func (m *MockHost) Command(name string) (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handler, ok := m.commands[name]

	return handler, ok
}
