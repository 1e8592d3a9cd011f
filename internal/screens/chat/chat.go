// Package chat is the tutoring conversation screen.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/chat"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

// attachPrefix starts an input line that attaches photos instead of
// sending text.
const attachPrefix = "/img "

type replyMsg struct {
	err error
}

// ChatScreen shows the transcript and an input line.
type ChatScreen struct {
	conv     *chat.Conversation
	input    components.TextInput
	attached []imaging.Image
	busy     bool
	spinner  int64
	frame    int
	scroll   int
	errMsg   string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates the screen for conv.
func New(conv *chat.Conversation) *ChatScreen {
	return &ChatScreen{
		conv:    conv,
		input:   components.NewTextInput("问问小娜老师吧… (/img 路径 添加图片)", 0, false),
		spinner: components.NewSpinnerID(),
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	return "聊天辅导"
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "发送"},
		{Key: "PgUp/PgDn", Description: "翻页"},
	}
	if len(c.attached) > 0 {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+X", Description: "清除图片"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "返回"})
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if msg.ID != c.spinner || !c.busy {
			return c, nil
		}
		c.frame++
		return c, components.SpinnerTick(c.spinner)

	case replyMsg:
		c.busy = false
		if msg.err != nil {
			c.errMsg = msg.err.Error()
		}
		return c, c.input.Focus()

	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			c.scroll += 10
			return c, nil
		case "pgdown":
			c.scroll = max(c.scroll-10, 0)
			return c, nil
		case "ctrl+x":
			c.attached = nil
			return c, nil
		case "enter":
			if c.busy {
				return c, nil
			}
			return c, c.submit()
		}
	}

	if c.busy {
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) submit() tea.Cmd {
	line := c.input.Value()
	c.errMsg = ""

	if paths, ok := strings.CutPrefix(line, attachPrefix); ok {
		imgs, err := imaging.LoadAll(imaging.SplitPaths(paths))
		if err != nil {
			c.errMsg = "读取图片失败：" + err.Error()
			return nil
		}
		c.attached = append(c.attached, imgs...)
		c.input.Reset()
		return nil
	}

	text := strings.TrimSpace(line)
	if text == "" && len(c.attached) == 0 {
		c.errMsg = chat.ErrEmptyMessage.Error()
		return nil
	}

	images := c.attached
	c.attached = nil
	c.input.Reset()
	c.input.Blur()
	c.busy = true
	c.frame = 0
	c.scroll = 0

	conv := c.conv
	send := func() tea.Msg {
		_, err := conv.Send(context.Background(), text, images)
		return replyMsg{err: err}
	}
	return tea.Batch(send, components.SpinnerTick(c.spinner))
}

func (c *ChatScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var footer []string
	if len(c.attached) > 0 {
		footer = append(footer, theme.Hint.Render(fmt.Sprintf("已添加 %d 张图片", len(c.attached))))
	}
	if c.errMsg != "" {
		footer = append(footer, components.ErrorLine(c.errMsg))
	}
	footer = append(footer, components.Card(c.input.View(), cw))
	bottom := strings.Join(footer, "\n")

	transcript := c.renderTranscript(cw)
	if c.busy {
		transcript += "\n\n" + components.Spinner(c.frame, "小娜老师正在思考…")
	}

	avail := max(height-lipgloss.Height(bottom)-1, 1)
	body := layout.Tail(transcript, avail)
	if c.scroll > 0 {
		lines := strings.Count(transcript, "\n") + 1
		body = layout.Window(transcript, max(lines-avail-c.scroll, 0), avail)
	}

	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft(2).
		Render(body + "\n" + bottom)
}

func (c *ChatScreen) renderTranscript(cw int) string {
	msgs := c.conv.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, renderMessage(m, cw))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMessage(m chat.Message, cw int) string {
	wrap := lipgloss.NewStyle().Width(cw)
	if m.Role == llm.RoleUser {
		label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("我")
		body := theme.Body.Render(m.Text)
		if n := len(m.Images); n > 0 {
			body = strings.TrimSpace(theme.Hint.Render(fmt.Sprintf("[%d 张图片]", n)) + " " + body)
		}
		return label + "\n" + wrap.Render(body)
	}

	label := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("小娜老师")
	if m.Failed {
		return label + "\n" + wrap.Render(components.ErrorLine(m.Text))
	}
	return label + "\n" + wrap.Render(theme.Markup.Render(m.Text))
}
