package markup

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Renderer styles parsed markup for the terminal.
type Renderer struct {
	Plain  lipgloss.Style
	Strong lipgloss.Style
}

// Render parses text and joins the styled paragraphs with newlines.
func (r Renderer) Render(text string) string {
	paras := Parse(text)
	lines := make([]string, len(paras))
	for i, p := range paras {
		var b strings.Builder
		for _, run := range p {
			if run.Strong {
				b.WriteString(r.Strong.Render(run.Text))
			} else {
				b.WriteString(r.Plain.Render(run.Text))
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
