// Package auth keeps the local user directory and the signed-in user.
//
// Passwords are stored as given. The directory only separates the
// mistake logs of people sharing one machine; it is not a security
// boundary.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Dimaray2024/xiaona/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserExists         = errors.New("用户名已存在")
	ErrNotLoggedIn        = errors.New("尚未登录")
	ErrTooShort           = errors.New("用户名和密码至少需要3个字符")
	ErrInvalidEmail       = errors.New("请输入有效的邮箱地址")
	ErrPasswordMismatch   = errors.New("两次输入的密码不一致！")
)

// MinLength is the minimum length of a username or password, in runes.
const MinLength = 3

// User is the signed-in user as stored under the current-user key.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email,omitempty"`
}

// account is a directory entry, keyed by username.
type account struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
}

// Update holds profile changes. An empty Password keeps the old one.
type Update struct {
	Avatar   string
	Email    string
	Password string
}

// ValidateRegistration checks the form rules for a new account.
func ValidateRegistration(username, password, email string) error {
	if len([]rune(username)) < MinLength || len([]rune(password)) < MinLength {
		return ErrTooShort
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Directory manages accounts in a KV store.
type Directory struct {
	kv     store.KV
	logger *slog.Logger
	newID  func() string
	mu     sync.Mutex
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Directory) { d.logger = l }
}

// WithIDGenerator replaces the user id generator.
func WithIDGenerator(f func() string) Option {
	return func(d *Directory) { d.newID = f }
}

// NewDirectory creates a Directory over kv.
func NewDirectory(kv store.KV, opts ...Option) *Directory {
	d := &Directory{
		kv:     kv,
		logger: slog.Default(),
		newID:  func() string { return "user_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register creates an account. It does not sign the user in.
func (d *Directory) Register(ctx context.Context, username, password, email string) error {
	if err := ValidateRegistration(username, password, email); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.accounts(ctx)
	if err != nil {
		return err
	}
	if _, ok := accounts[username]; ok {
		return ErrUserExists
	}
	accounts[username] = account{ID: d.newID(), Password: password, Email: email}
	return d.saveAccounts(ctx, accounts)
}

// Login checks the password and records username as the current user.
func (d *Directory) Login(ctx context.Context, username, password string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.accounts(ctx)
	if err != nil {
		return nil, err
	}
	acc, ok := accounts[username]
	if !ok || acc.Password != password {
		return nil, ErrInvalidCredentials
	}

	u := &User{ID: acc.ID, Username: username, Avatar: acc.Avatar, Email: acc.Email}
	if err := d.saveCurrent(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout forgets the current user.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.kv.Delete(ctx, store.KeyCurrentUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Current returns the signed-in user, or nil when nobody is. An unreadable
// entry is logged and treated as signed out.
func (d *Directory) Current(ctx context.Context) (*User, error) {
	raw, ok, err := d.kv.Get(ctx, store.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		d.logger.Warn("current user entry is corrupted, ignoring it", "err", err)
		return nil, nil
	}
	return &u, nil
}

// UpdateCurrent changes the profile of the signed-in user.
func (d *Directory) UpdateCurrent(ctx context.Context, upd Update) (*User, error) {
	cur, err := d.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrNotLoggedIn
	}
	if upd.Password != "" && len([]rune(upd.Password)) < MinLength {
		return nil, ErrTooShort
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.accounts(ctx)
	if err != nil {
		return nil, err
	}
	acc, ok := accounts[cur.Username]
	if !ok {
		return nil, ErrNotLoggedIn
	}
	acc.Avatar = upd.Avatar
	acc.Email = upd.Email
	if upd.Password != "" {
		acc.Password = upd.Password
	}
	accounts[cur.Username] = acc
	if err := d.saveAccounts(ctx, accounts); err != nil {
		return nil, err
	}

	cur.Avatar = upd.Avatar
	cur.Email = upd.Email
	if err := d.saveCurrent(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (d *Directory) accounts(ctx context.Context) (map[string]account, error) {
	raw, ok, err := d.kv.Get(ctx, store.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	accounts := make(map[string]account)
	if !ok {
		return accounts, nil
	}
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return accounts, nil
}

func (d *Directory) saveAccounts(ctx context.Context, accounts map[string]account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := d.kv.Put(ctx, store.KeyUsers, data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (d *Directory) saveCurrent(ctx context.Context, u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	if err := d.kv.Put(ctx, store.KeyCurrentUser, data); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	return nil
}
