package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ashwinyue/travacasa/internal/config"
)

// OllamaProvider 本地 Ollama 推理服务
type OllamaProvider struct {
	client  *api.Client
	model   string
	timeout time.Duration
	options map[string]any
}

// NewOllamaProvider 创建 Ollama 提供者，httpClient 为 nil 时使用默认客户端
func NewOllamaProvider(cfg *config.OllamaConfig, httpClient *http.Client) (*OllamaProvider, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama base url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	options := map[string]any{}
	if cfg.Temperature > 0 {
		options["temperature"] = cfg.Temperature
	}
	if cfg.TopP > 0 {
		options["top_p"] = cfg.TopP
	}
	if cfg.MaxTokens > 0 {
		options["num_predict"] = cfg.MaxTokens
	}

	return &OllamaProvider{
		client:  api.NewClient(base, httpClient),
		model:   cfg.Model,
		timeout: cfg.TimeoutDuration(),
		options: options,
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Source() string { return SourceLocal }

// Attempt 调用 /api/generate，非流式
func (p *OllamaProvider) Attempt(ctx context.Context, prompt *Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:   p.model,
		Prompt:  prompt.Full(),
		Stream:  &stream,
		Options: p.options,
	}

	var out strings.Builder
	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
