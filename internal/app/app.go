// Package app is the root Bubble Tea model.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/screens/home"
	"github.com/Dimaray2024/xiaona/internal/screens/login"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
)

// Options configures the application.
type Options struct {
	Deps home.Deps
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	user   *auth.User
	width  int
	height int
}

// newAppModel starts at the home menu when someone is already signed in,
// otherwise at the login form.
func newAppModel(opts Options) AppModel {
	deps := opts.Deps
	user, err := deps.Auth.Current(context.Background())
	if err != nil && deps.Logger != nil {
		deps.Logger.Warn("could not read current user", "err", err)
	}

	var first screen.Screen
	if user != nil {
		first = home.New(deps, user)
	} else {
		first = login.New(deps.Auth, func(u *auth.User) screen.Screen { return home.New(deps, u) })
	}
	return AppModel{router: router.New(first), user: user}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.UserChangedMsg:
		m.user = msg.User
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the whole frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	userLabel := ""
	if m.user != nil {
		userLabel = m.user.Username + "  "
	}
	header := layout.RenderHeader(title, userLabel, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "滚动"},
			{Key: "Esc", Description: "返回"},
			{Key: "Ctrl+C", Description: "退出"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "选择"},
			{Key: "Enter", Description: "确定"},
			{Key: "Ctrl+C", Description: "退出"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
