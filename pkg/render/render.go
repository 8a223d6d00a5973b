// Package render turns a selection range and an attribution result into
// renderable line annotations, and resolves hover content against the last
// rendered set. Everything here is a pure function of its inputs; the
// controller owns when to render, this package owns what.
package render

import (
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/editor"
	"github.com/papercomputeco/inlay/pkg/utils"
)

const (
	// LoadingText is the placeholder annotation shown while a fetch is
	// outstanding.
	LoadingText = "Loading…"

	// HumanText is the annotation for lines with no tracked AI change.
	HumanText = "Human"
)

// Set is one rendered batch of annotations: the selection it covers, the
// result it was built from, and the anchored annotations per line. The
// controller keeps the last Set so hover requests can test membership
// against exactly what is on screen.
type Set struct {
	doc     authorship.DocumentID
	sel     editor.SelectionEvent
	result  authorship.AttributionResult
	loading bool

	annotations []editor.Annotation
	byLine      map[int]editor.Annotation
}

// Loading builds the placeholder set for a fresh multi-line selection:
// every selected line is annotated with LoadingText.
func Loading(sel editor.SelectionEvent) *Set {
	return build(sel, nil, true)
}

// Build renders the final annotations for a selection from an attribution
// result. A nil result is valid and renders every line as human-authored.
func Build(sel editor.SelectionEvent, result authorship.AttributionResult) *Set {
	return build(sel, result, false)
}

func build(sel editor.SelectionEvent, result authorship.AttributionResult, loading bool) *Set {
	s := &Set{
		doc:     sel.Document,
		sel:     sel,
		result:  result,
		loading: loading,
		byLine:  make(map[int]editor.Annotation),
	}

	for line := sel.StartLine; line <= sel.EndLine; line++ {
		ann := editor.Annotation{
			Line:   line,
			Column: sel.AnchorColumn(line),
			Text:   s.lineText(line),
		}
		s.annotations = append(s.annotations, ann)
		s.byLine[line] = ann
	}

	return s
}

// lineText applies the text rule for one 0-based editor line.
func (s *Set) lineText(line int) string {
	if s.loading {
		return LoadingText
	}

	// Editor lines are 0-based; attribution lines are 1-based.
	info, ok := s.result.Line(line + 1)
	if !ok || !info.IsAIAuthored {
		return HumanText
	}

	return utils.Capitalize(info.Author)
}

// Document returns the document this set was rendered for.
func (s *Set) Document() authorship.DocumentID {
	return s.doc
}

// Loading reports whether this set is the placeholder rendering.
func (s *Set) Loading() bool {
	return s.loading
}

// Annotations returns the rendered annotations, one per selected line.
func (s *Set) Annotations() []editor.Annotation {
	return s.annotations
}
