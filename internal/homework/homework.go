// Package homework runs the analyze and grade flows: input checks, the model
// call, recording mistakes and the message shown to the student.
package homework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

// Outcome messages.
const (
	MsgBlank          = "作业看起来是空白的，记得要先完成哦！"
	MsgAllCorrect     = "太棒了，作业全部正确！继续保持！🎉"
	MsgStorageWarning = "保存错题失败：您的错题本存储空间可能已满。"
	MsgRecordFailed   = "作业照片无法保存，这次的错题没有记录到错题本。"
)

// MsgFound formats the message for n recorded mistakes.
func MsgFound(n int) string {
	return fmt.Sprintf("找到了 %d 道错题，已经帮你记录到错题本啦！", n)
}

// Tutor is the part of the contract layer the flows need.
type Tutor interface {
	AnalyzeProblem(ctx context.Context, images []imaging.Image) (*tutor.StructuredAnalysis, error)
	GradeHomework(ctx context.Context, images []imaging.Image) (*tutor.GradingResponse, error)
}

// Recorder stores graded mistakes.
type Recorder interface {
	Append(ctx context.Context, graded []tutor.GradedMistake, images []imaging.Image) (*mistakes.AppendResult, error)
}

// Service runs the flows.
type Service struct {
	tutor    Tutor
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires a Service.
func NewService(t Tutor, r Recorder, opts ...Option) *Service {
	s := &Service{tutor: t, recorder: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze explains the problem in images.
func (s *Service) Analyze(ctx context.Context, images []imaging.Image) (*tutor.StructuredAnalysis, error) {
	if len(images) == 0 {
		return nil, ErrNoProblemImages
	}
	return s.tutor.AnalyzeProblem(ctx, images)
}

// Outcome is the result of grading one submission.
type Outcome struct {
	// Message summarizes the result for the student.
	Message string

	Blank    bool
	Mistakes []tutor.GradedMistake

	// Added holds the records created in the mistake log.
	Added []mistakes.Record

	// Warning is set when the mistakes could not be saved to disk. They
	// are still in the log for this session.
	Warning string
}

// Grade grades the homework in images and records any mistakes found.
func (s *Service) Grade(ctx context.Context, images []imaging.Image) (*Outcome, error) {
	if len(images) == 0 {
		return nil, ErrNoHomeworkImages
	}

	res, err := s.tutor.GradeHomework(ctx, images)
	if err != nil {
		return nil, err
	}

	switch {
	case res.IsBlank:
		return &Outcome{Message: MsgBlank, Blank: true}, nil
	case len(res.Mistakes) == 0:
		return &Outcome{Message: MsgAllCorrect}, nil
	}

	out := &Outcome{
		Message:  MsgFound(len(res.Mistakes)),
		Mistakes: res.Mistakes,
	}
	appended, err := s.recorder.Append(ctx, res.Mistakes, images)
	switch {
	case err != nil:
		// The grading itself is still worth showing.
		s.logger.Warn("could not record graded mistakes", "err", err)
		out.Warning = MsgRecordFailed
		return out, nil
	case appended.PersistErr != nil:
		out.Warning = MsgStorageWarning
	}
	out.Added = appended.Added
	s.logger.Debug("homework graded", "mistakes", len(res.Mistakes), "images", len(images))
	return out, nil
}
