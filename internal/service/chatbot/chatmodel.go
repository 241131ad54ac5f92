package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/travacasa/internal/config"
)

// ChatModelProvider OpenAI 兼容的对话模型
type ChatModelProvider struct {
	model    model.BaseChatModel
	timeout  time.Duration
	handlers []callbacks.Handler
}

// NewChatModelProvider 通过 eino openai 组件创建
// handlers 会挂到每次调用的上下文上
func NewChatModelProvider(ctx context.Context, cfg *config.OpenAIConfig, handlers ...callbacks.Handler) (*ChatModelProvider, error) {
	timeout := cfg.TimeoutDuration()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return NewChatModelProviderFrom(chatModel, timeout, handlers...), nil
}

// NewChatModelProviderFrom 包装已有的 eino 模型
func NewChatModelProviderFrom(m model.BaseChatModel, timeout time.Duration, handlers ...callbacks.Handler) *ChatModelProvider {
	return &ChatModelProvider{model: m, timeout: timeout, handlers: handlers}
}

func (p *ChatModelProvider) Name() string { return "openai" }

func (p *ChatModelProvider) Source() string { return SourceHosted }

// Attempt 人设作为 system 消息，正文作为 user 消息
func (p *ChatModelProvider) Attempt(ctx context.Context, prompt *Prompt) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if len(p.handlers) > 0 {
		ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
			Name:      p.Name(),
			Type:      "OpenAI",
			Component: components.ComponentOfChatModel,
		}, p.handlers...)
	}

	resp, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(prompt.System),
		schema.UserMessage(prompt.Body),
	})
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}

	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
