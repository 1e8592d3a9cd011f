// Package mistakes is the mistake log screen: browsing, filtering, sorting
// and picking mistakes for practice.
package mistakes

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/practice"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
	"github.com/Dimaray2024/xiaona/internal/view"
)

// Source lists the stored mistakes.
type Source interface {
	All() []mistakes.Record
}

type practiceMsg struct {
	text string
	err  error
}

// MistakesScreen lists the mistake log.
type MistakesScreen struct {
	source    Source
	flow      *practice.Flow
	projector view.Projector

	filter view.Filter
	order  view.SortOrder
	sel    practice.Selection
	cursor int

	busy    bool
	spinner int64
	frame   int
	errMsg  string
}

var _ screen.Screen = (*MistakesScreen)(nil)
var _ screen.KeyHintProvider = (*MistakesScreen)(nil)

// New creates the screen. flow is nil when no model is configured.
func New(source Source, flow *practice.Flow, projector view.Projector) *MistakesScreen {
	return &MistakesScreen{
		source:    source,
		flow:      flow,
		projector: projector,
		filter:    view.FilterAll,
		order:     view.DateDesc,
		spinner:   components.NewSpinnerID(),
	}
}

func (m *MistakesScreen) Init() tea.Cmd {
	return nil
}

func (m *MistakesScreen) Title() string {
	return "错题本"
}

func (m *MistakesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Space", Description: "选择"},
		{Key: "Enter", Description: "详情"},
		{Key: "F", Description: "学科"},
		{Key: "S", Description: "排序"},
		{Key: "P", Description: "生成练习"},
		{Key: "Esc", Description: "返回"},
	}
}

// groups is the current projection bucketed by subject.
func (m *MistakesScreen) groups() []view.Group {
	return view.GroupBySubject(m.projector.Project(m.source.All(), m.filter, m.order))
}

// visible lists the rows in display order, which is the order the cursor
// walks.
func (m *MistakesScreen) visible() []mistakes.Record {
	var rows []mistakes.Record
	for _, g := range m.groups() {
		rows = append(rows, g.Records...)
	}
	return rows
}

func (m *MistakesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if msg.ID != m.spinner || !m.busy {
			return m, nil
		}
		m.frame++
		return m, components.SpinnerTick(m.spinner)

	case practiceMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = homework.UserMessage(msg.err, homework.MsgPracticeFailed)
			return m, nil
		}
		return m, router.Push(NewPractice(msg.text))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *MistakesScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	rows := m.visible()
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(rows)-1, 0))
	case "space", " ":
		if m.cursor < len(rows) {
			m.sel.Toggle(rows[m.cursor].ID)
		}
	case "enter":
		if m.cursor < len(rows) {
			return m, router.Push(NewDetail(rows[m.cursor]))
		}
	case "f":
		m.filter = next(view.Filters, m.filter)
		m.cursor = 0
	case "s":
		m.order = next(view.SortOrders, m.order)
		m.cursor = 0
	case "p":
		return m, m.generate()
	}
	return m, nil
}

func (m *MistakesScreen) generate() tea.Cmd {
	m.errMsg = ""
	if m.flow == nil {
		m.errMsg = "还没有配置AI，暂时不能生成练习题。"
		return nil
	}
	all := m.source.All()
	if len(practice.Resolve(&m.sel, all)) == 0 {
		m.errMsg = practice.ErrEmptySelection.Error()
		return nil
	}

	m.busy = true
	m.frame = 0
	flow := m.flow
	sel := m.sel.Clone()
	gen := func() tea.Msg {
		text, err := flow.Generate(context.Background(), sel, all)
		return practiceMsg{text: text, err: err}
	}
	return tea.Batch(gen, components.SpinnerTick(m.spinner))
}

// next returns the option after cur, wrapping around.
func next[T ~string](opts []view.Option[T], cur T) T {
	for i, o := range opts {
		if o.Value == cur {
			return opts[(i+1)%len(opts)].Value
		}
	}
	return opts[0].Value
}

func (m *MistakesScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	groups := m.groups()
	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	if m.cursor >= total {
		m.cursor = max(total-1, 0)
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	status := dim.Render(fmt.Sprintf("学科: %s  ·  排序: %s  ·  已选 %d 题",
		m.filter.Label(), m.order.Label(), m.sel.Len()))

	var bottom string
	switch {
	case m.busy:
		bottom = components.Spinner(m.frame, "小娜老师正在出题…")
	case m.errMsg != "":
		bottom = components.ErrorLine(m.errMsg)
	}

	var list string
	switch {
	case total > 0:
		list = m.renderGroups(groups, cw, max(height-4, 1))
	case len(m.source.All()) > 0:
		list = theme.Hint.Render("当前筛选条件下没有错题。")
	default:
		list = theme.Hint.Render("你的错题本是空的，去批改作业试试吧！")
	}

	out := status + "\n\n" + list
	if bottom != "" {
		out += "\n\n" + bottom
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 2).Render(out)
}

// renderGroups draws each subject under its badge and scrolls so the
// cursor row stays within avail lines.
func (m *MistakesScreen) renderGroups(groups []view.Group, cw, avail int) string {
	var lines []string
	row, cursorLine := 0, 0
	for i, g := range groups {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, theme.SubjectBadge(g.Subject))
		for _, r := range g.Records {
			if row == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, m.renderRow(r, row == m.cursor, cw))
			row++
		}
	}
	offset := max(cursorLine-avail+1, 0)
	return layout.Window(strings.Join(lines, "\n"), offset, avail)
}

func (m *MistakesScreen) renderRow(r mistakes.Record, current bool, cw int) string {
	box := "[ ]"
	if m.sel.Contains(r.ID) {
		box = "[✓]"
	}
	prefix := "  "
	if current {
		prefix = "▸ "
	}
	head := prefix + box + " "
	desc := ansi.Truncate(r.ProblemDescription, max(cw-lipgloss.Width(head), 8), "…")
	if current {
		return head + theme.Selected.Render(desc)
	}
	return head + theme.Unselected.Render(desc)
}
