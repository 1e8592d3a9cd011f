// Package chat holds a tutoring conversation with 小娜老师.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

// Welcome is the first message of every conversation. It is never sent to
// the model.
const Welcome = `你好呀！我是你的AI学习伙伴小娜老师。

**遇到难题了吗？** 把题目拍下来发给我，我们可以一起：
- **分析解题思路**
- **找出关键知识点**
- **一步步引导你，而不是直接给答案**

准备好了吗？我们开始吧！`

// ErrorReply replaces the model turn when the model could not be reached.
const ErrorReply = "抱歉，我好像遇到了一点小问题，请稍后再试。"

// ErrEmptyMessage is returned by Send when there is neither text nor an
// image.
var ErrEmptyMessage = &homework.ValidationError{Msg: "请输入问题或上传图片"}

const welcomeID = "welcome-1"

// imageOnly stands in for the text of an image-only turn in history.
const imageOnly = "[图片]"

// Message is one transcript entry.
type Message struct {
	ID   string
	Role llm.Role
	Text string

	// Images are data URLs of the compressed photos sent with a user turn.
	Images []string

	// Failed marks an ErrorReply turn.
	Failed bool
}

// Responder answers a chat turn.
type Responder interface {
	ChatTurn(ctx context.Context, history []tutor.Turn, message string, images []imaging.Image) (string, error)
}

// Compressor shrinks photos for the transcript.
type Compressor interface {
	CompressAll(ctx context.Context, imgs []imaging.Image) ([]imaging.Image, error)
}

// Conversation is safe for concurrent use, though callers normally wait for
// one Send to finish before starting the next.
type Conversation struct {
	responder  Responder
	compressor Compressor
	logger     *slog.Logger

	mu       sync.Mutex
	messages []Message
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// New starts a conversation with the welcome message.
func New(r Responder, comp Compressor, opts ...Option) *Conversation {
	c := &Conversation{
		responder:  r,
		compressor: comp,
		logger:     slog.Default(),
		messages:   []Message{{ID: welcomeID, Role: llm.RoleAssistant, Text: Welcome}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		m.Images = append([]string(nil), m.Images...)
		out[i] = m
	}
	return out
}

// Send adds the user's turn and the model's reply to the transcript and
// returns the reply. When the model cannot be reached the reply is
// ErrorReply and the failure is only logged.
func (c *Conversation) Send(ctx context.Context, text string, images []imaging.Image) (Message, error) {
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		return Message{}, ErrEmptyMessage
	}

	thumbs := c.thumbnails(ctx, images)

	c.mu.Lock()
	history := c.history()
	c.messages = append(c.messages, Message{
		ID:     "user_" + uuid.NewString(),
		Role:   llm.RoleUser,
		Text:   text,
		Images: thumbs,
	})
	c.mu.Unlock()

	reply := Message{Role: llm.RoleAssistant}
	answer, err := c.responder.ChatTurn(ctx, history, text, images)
	if err != nil {
		c.logger.Error("chat turn failed", "err", err)
		reply.ID = "error_" + uuid.NewString()
		reply.Text = ErrorReply
		reply.Failed = true
	} else {
		reply.ID = "model_" + uuid.NewString()
		reply.Text = answer
	}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.mu.Unlock()
	return reply, nil
}

// history replays every turn after the welcome as text. Callers hold mu.
func (c *Conversation) history() []tutor.Turn {
	var turns []tutor.Turn
	for _, m := range c.messages {
		if m.ID == welcomeID {
			continue
		}
		text := m.Text
		if strings.TrimSpace(text) == "" {
			text = imageOnly
		}
		turns = append(turns, tutor.Turn{Role: m.Role, Text: text})
	}
	return turns
}

func (c *Conversation) thumbnails(ctx context.Context, images []imaging.Image) []string {
	if len(images) == 0 {
		return nil
	}
	small, err := c.compressor.CompressAll(ctx, images)
	if err != nil {
		c.logger.Warn("could not compress chat images, keeping originals", "err", err)
		small = images
	}
	urls := make([]string, len(small))
	for i, img := range small {
		urls[i] = img.DataURL()
	}
	return urls
}
