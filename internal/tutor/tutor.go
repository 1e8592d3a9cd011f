// Package tutor is the contract between the app and the generative model:
// it owns the prompts and response schemas and turns raw model output into
// typed results.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

// Purpose labels recorded with each model request.
const (
	PurposeAnalysis = "problem-analysis"
	PurposeGrading  = "homework-grading"
	PurposeChat     = "chat"
	PurposePractice = "practice-gen"
)

// ChatFallback is shown when a chat reply is unusable and empty.
const ChatFallback = "抱歉，我好像出了一点小问题，没能理解我的思路。可以再说一遍吗？"

// Config tunes the model calls.
type Config struct {
	// Model overrides the provider model for analysis, grading and chat.
	// Empty uses the provider default.
	Model string `yaml:"model"`

	// PracticeModel overrides the model for practice generation.
	PracticeModel string `yaml:"practice_model"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens: 8192,
	}
}

// Tutor performs the four model operations.
type Tutor struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithLogger sets the logger used for recoverable anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tutor) { t.logger = l }
}

// New creates a Tutor backed by provider.
func New(provider llm.Provider, cfg Config, opts ...Option) *Tutor {
	t := &Tutor{provider: provider, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AnalyzeProblem explains how to solve the problem in the images without
// giving away the answer.
func (t *Tutor) AnalyzeProblem(ctx context.Context, images []imaging.Image) (*StructuredAnalysis, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	ctx = llm.WithPurpose(ctx, PurposeAnalysis)

	resp, err := t.generate(ctx, llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: analysisPrompt,
			Images:  imaging.LLMImages(images),
		}},
		Schema: AnalysisSchema,
		Model:  t.cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze problem: %w", err)
	}

	var out StructuredAnalysis
	if err := decode(AnalysisSchema, resp.Text(), &out); err != nil {
		return nil, fmt.Errorf("analyze problem: %w", err)
	}
	return &out, nil
}

// GradeHomework finds the incorrect items in the photographed homework.
// A blank response always carries no mistakes.
func (t *Tutor) GradeHomework(ctx context.Context, images []imaging.Image) (*GradingResponse, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	ctx = llm.WithPurpose(ctx, PurposeGrading)

	resp, err := t.generate(ctx, llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: gradingPrompt,
			Images:  imaging.LLMImages(images),
		}},
		Schema: GradingSchema,
		Model:  t.cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("grade homework: %w", err)
	}

	var out GradingResponse
	if err := decode(GradingSchema, resp.Text(), &out); err != nil {
		return nil, fmt.Errorf("grade homework: %w", err)
	}

	if out.IsBlank && len(out.Mistakes) > 0 {
		t.logger.Warn("blank homework reported with mistakes, ignoring them",
			"mistakes", len(out.Mistakes))
		out.Mistakes = nil
	}
	for i := range out.Mistakes {
		out.Mistakes[i].Subject = subject.Normalize(out.Mistakes[i].Subject)
	}
	return &out, nil
}

// ChatTurn answers message given the prior conversation. A reply that
// cannot be parsed degrades to its raw text, or to ChatFallback when
// empty. Only transport failures are returned as errors.
func (t *Tutor) ChatTurn(ctx context.Context, history []Turn, message string, images []imaging.Image) (string, error) {
	ctx = llm.WithPurpose(ctx, PurposeChat)

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		msgs = append(msgs, llm.Message{Role: h.Role, Content: h.Text})
	}
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: message,
		Images:  imaging.LLMImages(images),
	})

	resp, err := t.generate(ctx, llm.Request{
		System:   chatSystemPrompt,
		Messages: msgs,
		Schema:   ChatSchema,
		Model:    t.cfg.Model,
	})
	var fe *FormatError
	switch {
	case errors.As(err, &fe):
		return chatFallback(fe.Raw), nil
	case err != nil:
		return "", fmt.Errorf("chat: %w", err)
	}

	var out StructuredAnalysis
	if err := decode(ChatSchema, resp.Text(), &out); err != nil {
		t.logger.Debug("chat reply not structured, using raw text", "err", err)
		return chatFallback(resp.Text()), nil
	}
	return Flatten(&out), nil
}

// GeneratePractice asks for three new problems like the given ones. The
// result is plain text and never contains answers.
func (t *Tutor) GeneratePractice(ctx context.Context, problems []string) (string, error) {
	if len(problems) == 0 {
		return "", ErrNoProblems
	}
	ctx = llm.WithPurpose(ctx, PurposePractice)

	prompt, err := buildPracticePrompt(problems)
	if err != nil {
		return "", fmt.Errorf("build practice prompt: %w", err)
	}

	resp, err := t.generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Model:    t.cfg.PracticeModel,
	})
	if err != nil {
		return "", fmt.Errorf("generate practice: %w", err)
	}
	return resp.Text(), nil
}

// Flatten renders an analysis as emphasized-markup text: the bold title,
// then each section as a blank line, its bold subtitle and its content.
func Flatten(a *StructuredAnalysis) string {
	var b strings.Builder
	b.WriteString("**" + a.Title + "**")
	for _, s := range a.Sections {
		b.WriteString("\n\n**" + s.Subtitle + "**\n" + s.Content)
	}
	return b.String()
}

func (t *Tutor) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	req.MaxTokens = t.cfg.MaxTokens
	req.Temperature = t.cfg.Temperature

	resp, err := t.provider.Generate(ctx, req)
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, &FormatError{Raw: string(inv.Content), Err: inv.Err}
		}
		return nil, err
	}
	return resp, nil
}

// decode strips any code fence, validates against schema and unmarshals.
func decode(schema *llm.Schema, text string, out any) error {
	raw := json.RawMessage(llm.CleanJSON(text))
	if err := llm.ValidateResponse(schema, raw); err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			err = inv.Err
		}
		return &FormatError{Raw: text, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &FormatError{Raw: text, Err: err}
	}
	return nil
}

func chatFallback(raw string) string {
	if strings.TrimSpace(raw) != "" {
		return raw
	}
	return ChatFallback
}
