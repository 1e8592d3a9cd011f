// Package login is the sign-in and registration form shown before the
// home menu.
package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

const msgRegistered = "注册成功！请登录。"

type field int

const (
	fieldUsername field = iota
	fieldPassword
	fieldConfirm
	fieldEmail
)

type loginResultMsg struct {
	user *auth.User
	err  error
}

type registerResultMsg struct {
	err error
}

// LoginScreen signs a user in or registers a new account.
type LoginScreen struct {
	dir      *auth.Directory
	next     func(*auth.User) screen.Screen
	register bool
	focus    field
	inputs   [4]components.TextInput
	errMsg   string
	notice   string
	busy     bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the form. next builds the screen shown after a successful
// login.
func New(dir *auth.Directory, next func(*auth.User) screen.Screen) *LoginScreen {
	l := &LoginScreen{dir: dir, next: next}
	l.reset()
	return l
}

func (l *LoginScreen) reset() {
	l.inputs = [4]components.TextInput{
		components.NewTextInput("小可爱", 32, false),
		components.NewTextInput("密码", 64, true),
		components.NewTextInput("再输入一次密码", 64, true),
		components.NewTextInput("you@example.com", 64, false),
	}
	l.focus = fieldUsername
	for i := fieldPassword; i <= fieldEmail; i++ {
		l.inputs[i].Blur()
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.inputs[fieldUsername].Init()
}

func (l *LoginScreen) Title() string {
	if l.register {
		return "注册"
	}
	return "登录"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "去注册"
	if l.register {
		toggle = "去登录"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "下一项"},
		{Key: "Enter", Description: "确定"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Ctrl+C", Description: "退出"},
	}
}

func (l *LoginScreen) fields() int {
	if l.register {
		return 4
	}
	return 2
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		l.busy = false
		if msg.err != nil {
			l.errMsg = userError(msg.err)
			return l, nil
		}
		return l, tea.Batch(
			func() tea.Msg { return screen.UserChangedMsg{User: msg.user} },
			func() tea.Msg { return router.ResetScreenMsg{Screen: l.next(msg.user)} },
		)

	case registerResultMsg:
		l.busy = false
		if msg.err != nil {
			l.errMsg = userError(msg.err)
			return l, nil
		}
		l.register = false
		l.reset()
		l.errMsg = ""
		l.notice = msgRegistered
		return l, l.inputs[fieldUsername].Focus()

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch msg.String() {
		case "ctrl+r":
			l.register = !l.register
			l.reset()
			l.errMsg, l.notice = "", ""
			return l, l.inputs[fieldUsername].Focus()
		case "tab", "down":
			return l, l.moveFocus(1)
		case "shift+tab", "up":
			return l, l.moveFocus(-1)
		case "enter":
			if int(l.focus) < l.fields()-1 {
				return l, l.moveFocus(1)
			}
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return l, cmd
}

func (l *LoginScreen) moveFocus(delta int) tea.Cmd {
	n := l.fields()
	l.inputs[l.focus].Blur()
	l.focus = field((int(l.focus) + delta + n) % n)
	return l.inputs[l.focus].Focus()
}

func (l *LoginScreen) submit() tea.Cmd {
	username := strings.TrimSpace(l.inputs[fieldUsername].Value())
	password := l.inputs[fieldPassword].Value()
	email := strings.TrimSpace(l.inputs[fieldEmail].Value())
	l.errMsg, l.notice = "", ""
	if l.register && password != l.inputs[fieldConfirm].Value() {
		l.errMsg = auth.ErrPasswordMismatch.Error()
		return nil
	}
	l.busy = true

	dir := l.dir
	if l.register {
		return func() tea.Msg {
			return registerResultMsg{err: dir.Register(context.Background(), username, password, email)}
		}
	}
	return func() tea.Msg {
		u, err := dir.Login(context.Background(), username, password)
		return loginResultMsg{user: u, err: err}
	}
}

// userError keeps the directory's own messages and hides storage details.
func userError(err error) string {
	for _, known := range []error{
		auth.ErrInvalidCredentials, auth.ErrUserExists, auth.ErrTooShort, auth.ErrInvalidEmail,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "出了点问题，请稍后再试。"
}

func (l *LoginScreen) View(width, height int) string {
	labels := []string{"用户名", "密码", "确认密码", "邮箱"}
	var rows []string
	for i := 0; i < l.fields(); i++ {
		label := theme.Hint.Render(labels[i])
		if field(i) == l.focus {
			label = theme.Selected.Render(labels[i])
		}
		rows = append(rows, label, l.inputs[i].View(), "")
	}

	var status string
	switch {
	case l.busy:
		status = theme.Hint.Render("请稍候…")
	case l.errMsg != "":
		status = components.ErrorLine(l.errMsg)
	case l.notice != "":
		status = theme.Notice.Render(l.notice)
	}

	heading := theme.Title.Render(l.Title())
	form := components.Card(heading+"\n\n"+strings.Join(rows, "\n")+status, 40)

	content := RenderBanner(height) + "\n\n" + form
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
