package chatbot

import (
	"context"
	"errors"
)

// 回复来源标签，仅用于展示
const (
	SourceLocal    = "local model"
	SourceHosted   = "hosted API"
	SourceFallback = "fallback"
)

// ErrEmptyResponse 模型返回空内容
var ErrEmptyResponse = errors.New("empty response")

// Provider 外部文本生成服务
// Attempt 返回错误或空文本都视为未命中，由调用方切换到下一个
type Provider interface {
	// Name 用于日志
	Name() string
	// Source 对外展示的来源标签
	Source() string
	Attempt(ctx context.Context, p *Prompt) (string, error)
}
