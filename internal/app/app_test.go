package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dimaray2024/xiaona/internal/auth"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/router"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/screens/home"
	"github.com/Dimaray2024/xiaona/internal/screens/login"
	"github.com/Dimaray2024/xiaona/internal/screens/placeholder"
	"github.com/Dimaray2024/xiaona/internal/store"
)

func testDeps() home.Deps {
	kv := store.NewMemoryKV()
	return home.Deps{
		Auth:     auth.NewDirectory(kv),
		Mistakes: mistakes.NewRepository(kv, imaging.NewCompressor(0, 0)),
	}
}

func TestStartsAtLoginWhenSignedOut(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps()})
	_, ok := m.router.Active().(*login.LoginScreen)
	assert.True(t, ok)
	assert.Nil(t, m.user)
}

func TestStartsAtHomeWhenSignedIn(t *testing.T) {
	deps := testDeps()
	ctx := context.Background()
	require.NoError(t, deps.Auth.Register(ctx, "xiaoming", "secret", "xm@example.com"))
	_, err := deps.Auth.Login(ctx, "xiaoming", "secret")
	require.NoError(t, err)

	m := newAppModel(Options{Deps: deps})

	_, ok := m.router.Active().(*home.HomeScreen)
	assert.True(t, ok)
	require.NotNil(t, m.user)
	assert.Equal(t, "xiaoming", m.user.Username)
}

func TestHeaderShowsUser(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated, _ = updated.Update(screen.UserChangedMsg{User: &auth.User{Username: "小红"}})

	am := updated.(AppModel)
	assert.Equal(t, "小红", am.user.Username)
	assert.Contains(t, am.render(), "小红")
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps()})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)

	m.router.Push(placeholder.New("聊天辅导"))
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestTooSmall(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Contains(t, updated.(AppModel).render(), "窗口太小啦")
}
