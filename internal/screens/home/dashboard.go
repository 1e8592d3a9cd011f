package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
	"github.com/Dimaray2024/xiaona/internal/view"
)

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 18

func renderGreeting(username string, cw int) string {
	hello := theme.Title.Render(fmt.Sprintf("%s，你好呀！", username))
	sub := theme.Subtitle.Render("今天想和小娜老师一起学点什么？")
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(hello + "\n" + sub)
}

// renderStatsBar shows how many mistakes each subject has, starting with
// the subject of the newest mistake.
func renderStatsBar(records []mistakes.Record, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	count := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

	var text string
	if len(records) == 0 {
		text = dim.Render("错题本还是空的，真棒！")
	} else {
		groups := view.GroupBySubject(view.Project(records, view.FilterAll, view.DateDesc))
		parts := make([]string, 0, len(groups)+1)
		parts = append(parts, dim.Render("错题本 ")+count.Render(fmt.Sprint(len(records))))
		for _, g := range groups {
			parts = append(parts, theme.SubjectBadge(g.Subject)+count.Render(fmt.Sprint(len(g.Records))))
		}
		text = strings.Join(parts, dim.Render("  ·  "))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderMenu renders each menu item as a fixed-width button, or as plain
// lines when compact.
func renderMenu(items []components.MenuItem, selected, cw int, compact bool) string {
	var lines []string
	for i, item := range items {
		lines = append(lines, renderButton(item.Label, i == selected, item.Disabled, compact))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func renderButton(label string, selected, disabled, compact bool) string {
	st := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case disabled:
		st = st.Foreground(theme.TextDim)
	case selected:
		st = st.Bold(true).Foreground(theme.BgCard).Background(theme.Primary)
		label = "▸ " + label
	}
	if compact {
		return st.Render(" " + label + " ")
	}
	border := theme.Border
	if selected && !disabled {
		border = theme.Primary
	}
	return st.
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(label)
}

// renderAIBanner warns that the model features are unavailable.
func renderAIBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ 还没有配置AI密钥，部分功能暂不可用 (见 xiaona --help)")
}

func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderFrame wraps content in a double border centered in the area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
