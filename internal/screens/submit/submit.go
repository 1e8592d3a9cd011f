// Package submit is the screen for sending homework photos to be analyzed
// or graded.
package submit

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/screen"
	"github.com/Dimaray2024/xiaona/internal/tutor"
	"github.com/Dimaray2024/xiaona/internal/ui/components"
	"github.com/Dimaray2024/xiaona/internal/ui/layout"
	"github.com/Dimaray2024/xiaona/internal/ui/theme"
)

// Mode selects the flow.
type Mode int

const (
	ModeAnalyze Mode = iota
	ModeGrade
)

// Runner runs the two photo flows.
type Runner interface {
	Analyze(ctx context.Context, images []imaging.Image) (*tutor.StructuredAnalysis, error)
	Grade(ctx context.Context, images []imaging.Image) (*homework.Outcome, error)
}

type phase int

const (
	phaseInput phase = iota
	phaseRunning
	phaseResult
)

type analyzedMsg struct {
	analysis *tutor.StructuredAnalysis
	err      error
}

type gradedMsg struct {
	outcome *homework.Outcome
	err     error
}

// SubmitScreen collects image paths, runs the flow and shows the result.
type SubmitScreen struct {
	mode    Mode
	runner  Runner
	input   components.TextInput
	phase   phase
	spinner int64
	frame   int
	images  int
	errMsg  string
	result  *result
	offset  int
}

// result is what the result phase renders. Exactly one of analysis and
// outcome is set.
type result struct {
	analysis *tutor.StructuredAnalysis
	outcome  *homework.Outcome
}

var _ screen.Screen = (*SubmitScreen)(nil)
var _ screen.KeyHintProvider = (*SubmitScreen)(nil)

// New creates the screen for mode.
func New(mode Mode, runner Runner) *SubmitScreen {
	return &SubmitScreen{
		mode:    mode,
		runner:  runner,
		input:   components.NewTextInput("照片路径，多张用空格分隔", 0, false),
		spinner: components.NewSpinnerID(),
	}
}

func (s *SubmitScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SubmitScreen) Title() string {
	if s.mode == ModeGrade {
		return "批改作业"
	}
	return "题目解析"
}

func (s *SubmitScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseRunning:
		return []layout.KeyHint{{Key: "Esc", Description: "返回"}}
	case phaseResult:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "滚动"},
			{Key: "N", Description: "再来一次"},
			{Key: "Esc", Description: "返回"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "提交"},
		{Key: "Esc", Description: "返回"},
	}
}

func (s *SubmitScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if msg.ID != s.spinner || s.phase != phaseRunning {
			return s, nil
		}
		s.frame++
		return s, components.SpinnerTick(s.spinner)

	case analyzedMsg:
		if msg.err != nil {
			return s.fail(homework.UserMessage(msg.err, homework.MsgAnalyzeFailed))
		}
		s.phase, s.offset = phaseResult, 0
		s.result = &result{analysis: msg.analysis}
		return s, nil

	case gradedMsg:
		if msg.err != nil {
			return s.fail(homework.UserMessage(msg.err, homework.MsgGradeFailed))
		}
		s.phase, s.offset = phaseResult, 0
		s.result = &result{outcome: msg.outcome}
		return s, nil

	case tea.KeyMsg:
		switch s.phase {
		case phaseRunning:
			return s, nil
		case phaseResult:
			return s.handleResultKey(msg)
		}
		if msg.String() == "enter" {
			return s, s.submit()
		}
	}

	if s.phase != phaseInput {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SubmitScreen) handleResultKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset++
	case "pgup":
		s.offset = max(s.offset-10, 0)
	case "pgdown", "space":
		s.offset += 10
	case "n":
		s.phase = phaseInput
		s.result = nil
		s.errMsg = ""
		s.input.Reset()
		return s, s.input.Focus()
	}
	return s, nil
}

func (s *SubmitScreen) fail(msg string) (screen.Screen, tea.Cmd) {
	s.phase = phaseInput
	s.errMsg = msg
	return s, s.input.Focus()
}

func (s *SubmitScreen) submit() tea.Cmd {
	images, err := imaging.LoadAll(imaging.SplitPaths(s.input.Value()))
	if err != nil {
		s.errMsg = "读取图片失败：" + err.Error()
		return nil
	}

	s.errMsg = ""
	s.images = len(images)
	s.phase = phaseRunning
	s.frame = 0
	s.input.Blur()

	runner := s.runner
	run := func() tea.Msg {
		a, err := runner.Analyze(context.Background(), images)
		return analyzedMsg{analysis: a, err: err}
	}
	if s.mode == ModeGrade {
		run = func() tea.Msg {
			o, err := runner.Grade(context.Background(), images)
			return gradedMsg{outcome: o, err: err}
		}
	}
	return tea.Batch(run, components.SpinnerTick(s.spinner))
}

func (s *SubmitScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch s.phase {
	case phaseRunning:
		label := "小娜老师正在看题…"
		if s.mode == ModeGrade {
			label = "小娜老师正在批改…"
		}
		body = components.Spinner(s.frame, fmt.Sprintf("%s (%d 张图片)", label, s.images))
	case phaseResult:
		body = layout.Window(s.renderResult(cw), s.offset, max(height-2, 1))
	default:
		body = s.renderInput(cw)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(body)
}

func (s *SubmitScreen) renderInput(cw int) string {
	prompt := "拍下题目，把照片路径告诉小娜老师吧。"
	if s.mode == ModeGrade {
		prompt = "把写好的作业照片路径发给小娜老师，错题会自动记到错题本里。"
	}
	out := theme.Body.Render(prompt) + "\n\n" + components.Card(s.input.View(), cw)
	if s.errMsg != "" {
		out += "\n\n" + components.ErrorLine(s.errMsg)
	}
	return out
}

func (s *SubmitScreen) renderResult(cw int) string {
	if a := s.result.analysis; a != nil {
		return components.Card(theme.Markup.Render(tutor.Flatten(a)), cw)
	}

	o := s.result.outcome
	parts := []string{theme.Notice.Render(o.Message)}
	if o.Warning != "" {
		parts = append(parts, theme.Warning.Render(o.Warning))
	}
	for _, m := range o.Mistakes {
		parts = append(parts, components.Mistake(m.Subject, m.ProblemDescription, m.ReasonForError, m.CorrectSteps, cw))
	}
	return strings.Join(parts, "\n\n")
}
