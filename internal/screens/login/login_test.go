package login

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/store"
)

type stubScreen struct{ user *auth.User }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "首页" }

func newLogin(t *testing.T) (*LoginScreen, *auth.Directory) {
	t.Helper()
	dir := auth.NewDirectory(store.NewMemoryKV())
	return New(dir, func(u *auth.User) screen.Screen { return &stubScreen{user: u} }), dir
}

func typeText(l *LoginScreen, text string) {
	for _, r := range text {
		l.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func enter(l *LoginScreen) tea.Cmd {
	_, cmd := l.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func ctrlR(l *LoginScreen) {
	l.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
}

// finish delivers the result of an async auth command.
func finish(t *testing.T, l *LoginScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	assert.True(t, l.busy)
	_, next := l.Update(cmd())
	return next
}

func TestLogin_Success(t *testing.T) {
	l, dir := newLogin(t)
	require.NoError(t, dir.Register(context.Background(), "xiaoming", "secret", "xm@example.com"))

	typeText(l, "xiaoming")
	assert.Nil(t, enter(l))
	assert.Equal(t, fieldPassword, l.focus)
	typeText(l, "secret")

	next := finish(t, l, enter(l))
	require.NotNil(t, next)

	batch, ok := next().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	changed, ok := batch[0]().(screen.UserChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "xiaoming", changed.User.Username)

	reset, ok := batch[1]().(router.ResetScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "xiaoming", reset.Screen.(*stubScreen).user.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	l, dir := newLogin(t)
	require.NoError(t, dir.Register(context.Background(), "xiaoming", "secret", "xm@example.com"))

	typeText(l, "xiaoming")
	enter(l)
	typeText(l, "nope")

	next := finish(t, l, enter(l))

	assert.Nil(t, next)
	assert.False(t, l.busy)
	assert.Equal(t, "用户名或密码错误", l.errMsg)
}

func TestRegister_ThenLoginNotice(t *testing.T) {
	l, dir := newLogin(t)
	ctrlR(l)
	assert.True(t, l.register)
	assert.Equal(t, "注册", l.Title())

	typeText(l, "xiaohong")
	enter(l)
	typeText(l, "abc123")
	enter(l)
	typeText(l, "abc123")
	enter(l)
	assert.Equal(t, fieldEmail, l.focus)
	typeText(l, "xh@example.com")

	finish(t, l, enter(l))

	assert.False(t, l.register)
	assert.Equal(t, msgRegistered, l.notice)
	assert.Empty(t, l.inputs[fieldUsername].Value())
	_, err := dir.Login(context.Background(), "xiaohong", "abc123")
	assert.NoError(t, err)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	l, _ := newLogin(t)
	ctrlR(l)

	typeText(l, "xiaohong")
	enter(l)
	typeText(l, "abc123")
	enter(l)
	typeText(l, "abc124")
	enter(l)

	assert.Nil(t, enter(l))
	assert.False(t, l.busy)
	assert.Equal(t, "两次输入的密码不一致！", l.errMsg)
}

func TestRegister_Duplicate(t *testing.T) {
	l, dir := newLogin(t)
	require.NoError(t, dir.Register(context.Background(), "xiaoming", "secret", "xm@example.com"))
	ctrlR(l)

	typeText(l, "xiaoming")
	enter(l)
	typeText(l, "secret")
	enter(l)
	typeText(l, "secret")
	enter(l)
	typeText(l, "xm@example.com")
	finish(t, l, enter(l))

	assert.Equal(t, "用户名已存在", l.errMsg)
	assert.True(t, l.register)
}

func TestRegister_TooShort(t *testing.T) {
	l, _ := newLogin(t)
	ctrlR(l)

	typeText(l, "ab")
	enter(l)
	typeText(l, "12")
	enter(l)
	typeText(l, "12")
	enter(l)
	finish(t, l, enter(l))

	assert.Equal(t, "用户名和密码至少需要3个字符", l.errMsg)
}

func TestRegister_MissingEmail(t *testing.T) {
	l, dir := newLogin(t)
	ctrlR(l)

	typeText(l, "xiaohong")
	enter(l)
	typeText(l, "abc123")
	enter(l)
	typeText(l, "abc123")
	enter(l)
	finish(t, l, enter(l))

	assert.Equal(t, "请输入有效的邮箱地址", l.errMsg)
	assert.True(t, l.register)
	_, err := dir.Login(context.Background(), "xiaohong", "abc123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestView_ShowsBannerAndForm(t *testing.T) {
	l, _ := newLogin(t)
	v := l.View(100, 40)
	assert.Contains(t, v, "小 娜 老 师")
	assert.Contains(t, v, "用户名")
	assert.NotContains(t, v, "确认密码")

	ctrlR(l)
	assert.Contains(t, l.View(100, 40), "确认密码")
}
