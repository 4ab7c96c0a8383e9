package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minDescriptionWrap keeps narrow overlays from wrapping task notes into a
// one-word-per-line ribbon.
const minDescriptionWrap = 24

// descriptionRenderer styles task descriptions as markdown for the task
// info overlay. The glamour renderer is rebuilt when the wrap width changes.
type descriptionRenderer struct {
	wrapWidth int
	term      *glamour.TermRenderer
}

// render returns the description as ANSI-styled text wrapped to width. A
// renderer failure falls back to the raw description text.
func (r *descriptionRenderer) render(description string, width int) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	if width < minDescriptionWrap {
		width = minDescriptionWrap
	}

	if r.term == nil || r.wrapWidth != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return description
		}
		r.term = term
		r.wrapWidth = width
	}

	out, err := r.term.Render(description)
	if err != nil {
		return description
	}
	return strings.TrimRight(out, "\n")
}
