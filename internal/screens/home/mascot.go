package home

import (
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle     MascotVariant = iota
	MascotCheering               // empty mistake log
	MascotWorried                // many mistakes waiting for practice
)

// worriedThreshold is the log size at which the mascot starts nagging.
const worriedThreshold = 10

const mascotIdle = `┌─────┐
│ ◠ ◠ │
│  ▽  │
│ 1+1 │
└─────┘`

const mascotCheering = `┌─────┐
│ ★ ★ │
│  ▿  │
│ 1+1 │
└─╥═╥─┘
  ╚═╝`

const mascotWorried = `┌─────┐
│ ◉ ◉ │ !
│  ~  │
│ 1+1 │
└─────┘`

func mascotFor(mistakeCount int) MascotVariant {
	switch {
	case mistakeCount == 0:
		return MascotCheering
	case mistakeCount >= worriedThreshold:
		return MascotWorried
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCheering:
		art, fg = mascotCheering, theme.Success
	case MascotWorried:
		art, fg = mascotWorried, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
