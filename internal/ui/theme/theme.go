package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/markup"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

// Color palette: warm and soft, like a picture book.
var (
	Primary   = lipgloss.Color("#F59E0B") // Amber
	Secondary = lipgloss.Color("#38BDF8") // Sky blue
	Accent    = lipgloss.Color("#F472B6") // Sakura pink
	Success   = lipgloss.Color("#34D399") // Mint green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#FFFBEB") // Cream
	TextDim   = lipgloss.Color("#A8A29E") // Stone
	BgCard    = lipgloss.Color("#292524") // Dark stone
	Border    = lipgloss.Color("#57534E") // Stone
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Strong = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Section = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(Secondary).
		PaddingLeft(1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Notice = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Markup renders model text with emphasized runs highlighted.
var Markup = markup.Renderer{Plain: Body, Strong: Strong}

var subjectColors = map[subject.Subject]lipgloss.Style{
	subject.Chinese: lipgloss.NewStyle().Foreground(Secondary),
	subject.Math:    lipgloss.NewStyle().Foreground(Accent),
	subject.English: lipgloss.NewStyle().Foreground(Success),
	subject.Other:   lipgloss.NewStyle().Foreground(Primary),
}

// SubjectBadge renders a subject name in its color.
func SubjectBadge(s subject.Subject) string {
	st, ok := subjectColors[s]
	if !ok {
		st = Body
	}
	return st.Bold(true).Render("【" + string(s) + "】")
}
