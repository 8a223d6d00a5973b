package render

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/inlay/pkg/editor"
	"github.com/papercomputeco/inlay/pkg/utils"
)

// maxPromptChars bounds the prompt excerpt surfaced in hover content.
const maxPromptChars = 200

// humanHoverNote explains a human attribution in hover content.
const humanHoverNote = "No AI-authored change is recorded for this line."

// ResolveHover returns hover content when pos falls on a rendered
// annotation. An annotation occupies a zero-width anchor at end-of-line, so
// membership is: same line as an annotation and cursor column at or past
// the anchor. Positions off every annotation, and placeholder sets still
// loading, yield no content.
func (s *Set) ResolveHover(pos editor.Position) *editor.Hover {
	if s.loading {
		return nil
	}

	ann, ok := s.byLine[pos.Line]
	if !ok || pos.Column < ann.Column {
		return nil
	}

	return &editor.Hover{Markdown: s.hoverMarkdown(pos.Line)}
}

// hoverMarkdown builds the hover body for one 0-based editor line.
func (s *Set) hoverMarkdown(line int) string {
	info, ok := s.result.Line(line + 1)
	if !ok || !info.IsAIAuthored {
		return fmt.Sprintf("Author: %s\n\n_%s_", HumanText, humanHoverNote)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Author: %s", utils.Capitalize(info.Author))

	if p := info.Prompt; p != nil {
		if p.AgentModel != nil {
			fmt.Fprintf(&b, "\n\nModel: %s", *p.AgentModel)
		}
		if p.PairedHumanAuthor != nil {
			fmt.Fprintf(&b, "\n\nPaired with: %s", *p.PairedHumanAuthor)
		}
		if msg, found := p.FirstUserMessage(); found {
			fmt.Fprintf(&b, "\n\n```\n%s\n```", utils.Truncate(msg, maxPromptChars))
		}
	}

	return b.String()
}
