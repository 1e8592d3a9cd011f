package homework

import (
	"context"
	"errors"

	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

// ValidationError is a problem with the student's input. Its message is
// shown as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrNoProblemImages  = &ValidationError{Msg: "请先上传题目图片哦！"}
	ErrNoHomeworkImages = &ValidationError{Msg: "请先上传作业图片哦！"}
)

// Fallback messages for errors with no better description.
const (
	MsgAnalyzeFailed  = "分析题目时发生未知错误。"
	MsgGradeFailed    = "批改作业时发生未知错误。"
	MsgPracticeFailed = "生成练习题失败，请稍后重试。"
)

const (
	msgInvalidFormat = "AI返回的格式无效，请重试。"
	msgRateLimited   = "小娜老师有点忙，请稍等一会儿再试。"
	msgUnavailable   = "暂时连接不上AI服务，请检查网络后重试。"
	msgTimeout       = "AI响应超时了，请稍后再试。"
)

// UserMessage turns err into a message for the student. Errors it does not
// recognize get fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	var rl *llm.ErrRateLimit
	var pu *llm.ErrProviderUnavailable
	var swe *mistakes.StorageWriteError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, tutor.ErrNoImages):
		return ErrNoProblemImages.Msg
	case errors.Is(err, tutor.ErrInvalidResponseFormat):
		return msgInvalidFormat
	case errors.As(err, &swe):
		return MsgStorageWarning
	case errors.As(err, &rl):
		return msgRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.As(err, &pu):
		return msgUnavailable
	}
	return fallback
}
