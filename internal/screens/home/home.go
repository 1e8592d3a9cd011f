// Package home is the main menu shown after login.
package home

import (
	"context"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/chat"
	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/practice"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	chatscreen "github.com/Dimaray2024/xiaona/internal/screens/chat"
	"github.com/Dimaray2024/xiaona/internal/screens/login"
	mistakescreen "github.com/Dimaray2024/xiaona/internal/screens/mistakes"
	"github.com/Dimaray2024/xiaona/internal/screens/placeholder"
	"github.com/Dimaray2024/xiaona/internal/screens/submit"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/view"
)

// Deps are the services behind the menu. Homework, NewChat and Practice
// are nil when no model is configured.
type Deps struct {
	Auth      *auth.Directory
	Mistakes  *mistakes.Repository
	Homework  *homework.Service
	NewChat   func() *chat.Conversation
	Practice  *practice.Flow
	Projector view.Projector
	Logger    *slog.Logger
}

// AIReady reports whether the model-backed features can run.
func (d Deps) AIReady() bool {
	return d.Homework != nil && d.NewChat != nil && d.Practice != nil
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps Deps
	user *auth.User
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the menu for user.
func New(deps Deps, user *auth.User) *HomeScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &HomeScreen{deps: deps, user: user}

	push := func(s func() screen.Screen, title string) func() tea.Cmd {
		return func() tea.Cmd {
			if !deps.AIReady() {
				return router.Push(placeholder.New(title))
			}
			return router.Push(s())
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "聊天辅导", Action: push(func() screen.Screen {
			return chatscreen.New(deps.NewChat())
		}, "聊天辅导")},
		{Label: "题目解析", Action: push(func() screen.Screen {
			return submit.New(submit.ModeAnalyze, deps.Homework)
		}, "题目解析")},
		{Label: "批改作业", Action: push(func() screen.Screen {
			return submit.New(submit.ModeGrade, deps.Homework)
		}, "批改作业")},
		{Label: "错题本", Action: func() tea.Cmd {
			return router.Push(mistakescreen.New(deps.Mistakes, deps.Practice, deps.Projector))
		}},
		{Label: "退出登录", Action: h.logout},
		{Label: "退出", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) logout() tea.Cmd {
	if err := h.deps.Auth.Logout(context.Background()); err != nil {
		h.deps.Logger.Error("logout failed", "err", err)
	}
	deps := h.deps
	next := login.New(deps.Auth, func(u *auth.User) screen.Screen { return New(deps, u) })
	return tea.Batch(
		func() tea.Msg { return screen.UserChangedMsg{} },
		func() tea.Msg { return router.ResetScreenMsg{Screen: next} },
	)
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 24 || width < 80
	cw := components.ContentWidth(width)
	records := h.deps.Mistakes.All()

	var sections []string
	name := "同学"
	if h.user != nil {
		name = h.user.Username
	}
	sections = append(sections, renderGreeting(name, cw))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(len(records)), cw))
	}
	sections = append(sections, renderStatsBar(records, cw))
	if !h.deps.AIReady() {
		sections = append(sections, renderAIBanner(cw))
	}
	sections = append(sections, renderMenu(h.menu.Items, h.menu.Selected, cw, compact))

	sep := "\n\n"
	if compact {
		sep = "\n"
	}
	return renderFrame(strings.Join(sections, sep), width, height)
}

func (h *HomeScreen) Title() string {
	return "首页"
}
