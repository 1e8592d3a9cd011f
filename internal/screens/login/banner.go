package login

import (
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

const mascotArt = `  ╭───────────╮
  │  ┌─────┐  │
  │  │ ◠ ◠ │  │
  │  │  ▽  │  │
  │  ├─────┤  │
  │  │ 1+1 │  │
  │  └─────┘  │
  ╰───────────╯`

// RenderBanner returns the greeting above the form. The mascot is left out
// on short terminals.
func RenderBanner(height int) string {
	top := lipgloss.NewStyle().Foreground(theme.Primary).Render("欢迎来到")
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("小 娜 老 师")
	if height < 30 {
		return top + "\n" + name
	}
	mascot := lipgloss.NewStyle().Foreground(theme.Accent).Render(mascotArt)
	return mascot + "\n\n" + top + "\n" + name
}
