package mistakes

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

// DetailScreen shows one mistake in full.
type DetailScreen struct {
	record mistakes.Record
	offset int
}

var _ screen.Screen = (*DetailScreen)(nil)

// NewDetail creates the detail view of r.
func NewDetail(r mistakes.Record) *DetailScreen {
	return &DetailScreen{record: r}
}

func (d *DetailScreen) Init() tea.Cmd { return nil }

func (d *DetailScreen) Title() string { return "错题详情" }

func (d *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	d.offset = scroll(msg, d.offset)
	return d, nil
}

func (d *DetailScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	r := d.record
	body := components.Mistake(r.Subject, r.ProblemDescription, r.ReasonForError, r.CorrectSteps, cw)
	if n := len(r.HomeworkImages); n > 0 {
		body += "\n" + theme.Hint.Render(fmt.Sprintf("来自一次批改的 %d 张作业照片 · %s", n, r.ID))
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 2).
		Render(layout.Window(body, d.offset, height))
}

// PracticeScreen shows generated practice problems.
type PracticeScreen struct {
	text   string
	offset int
}

var _ screen.Screen = (*PracticeScreen)(nil)

// NewPractice creates the screen for text.
func NewPractice(text string) *PracticeScreen {
	return &PracticeScreen{text: text}
}

func (p *PracticeScreen) Init() tea.Cmd { return nil }

func (p *PracticeScreen) Title() string { return "专属练习" }

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	p.offset = scroll(msg, p.offset)
	return p, nil
}

func (p *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	body := components.Card(theme.Markup.Render(p.text), cw)
	return lipgloss.NewStyle().Width(width).Padding(0, 2).
		Render(layout.Window(body, p.offset, height))
}

func scroll(msg tea.Msg, offset int) int {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return offset
	}
	switch k.String() {
	case "up", "k":
		return max(offset-1, 0)
	case "down", "j":
		return offset + 1
	case "pgup":
		return max(offset-10, 0)
	case "pgdown":
		return offset + 10
	}
	return offset
}
