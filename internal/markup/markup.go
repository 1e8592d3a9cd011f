// Package markup parses the small text convention used in model output:
// line breaks separate paragraphs and **double asterisks** mark emphasis.
package markup

import (
	"regexp"
	"strings"
)

var emphasis = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Run is a stretch of text that is either plain or emphasized.
type Run struct {
	Text   string
	Strong bool
}

// Paragraph is one line of text.
type Paragraph []Run

// Parse splits text on line breaks and each line into runs. Empty plain
// stretches are dropped, so an empty line yields an empty paragraph. An
// unmatched ** stays in the plain text.
func Parse(text string) []Paragraph {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]Paragraph, len(lines))
	for i, line := range lines {
		out[i] = ParseLine(line)
	}
	return out
}

// ParseLine parses a single line.
func ParseLine(line string) Paragraph {
	var p Paragraph
	last := 0
	for _, m := range emphasis.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			p = append(p, Run{Text: line[last:m[0]]})
		}
		p = append(p, Run{Text: line[m[2]:m[3]], Strong: true})
		last = m[1]
	}
	if last < len(line) {
		p = append(p, Run{Text: line[last:]})
	}
	return p
}

// Plain returns the paragraph text without markers.
func (p Paragraph) Plain() string {
	var b strings.Builder
	for _, r := range p {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Strip removes the emphasis markers from text.
func Strip(text string) string {
	return emphasis.ReplaceAllString(text, "$1")
}
