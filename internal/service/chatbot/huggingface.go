package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/logger"
)

// HuggingFaceProvider Hugging Face 托管推理，按顺序尝试多个模型
type HuggingFaceProvider struct {
	apiKey     string
	baseURL    string
	models     []string
	client     *http.Client
	retryDelay time.Duration
	params     hfParameters
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// errModelLoading 模型仍在预热 (HTTP 503)
var errModelLoading = errors.New("model is loading")

// NewHuggingFaceProvider 创建 Hugging Face 提供者，httpClient 为 nil 时按配置超时创建
func NewHuggingFaceProvider(cfg *config.HuggingFaceConfig, httpClient *http.Client) *HuggingFaceProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	return &HuggingFaceProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		models:     cfg.Models,
		client:     httpClient,
		retryDelay: cfg.RetryDelay(),
		params: hfParameters{
			MaxNewTokens: cfg.MaxNewTokens,
			Temperature:  cfg.Temperature,
			TopP:         0.9,
		},
	}
}

func (p *HuggingFaceProvider) Name() string { return "huggingface" }

func (p *HuggingFaceProvider) Source() string { return SourceHosted }

// Attempt 依次尝试各模型，返回第一个非空结果
func (p *HuggingFaceProvider) Attempt(ctx context.Context, prompt *Prompt) (string, error) {
	var errs []error
	for _, model := range p.models {
		text, err := p.callModel(ctx, model, prompt.Full())
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		logger.Debug("hugging face model miss", zap.String("model", model), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}
	if len(errs) == 0 {
		return "", errors.New("no hugging face models configured")
	}
	return "", errors.Join(errs...)
}

// callModel 503 时等待 retryDelay 后重试一次
func (p *HuggingFaceProvider) callModel(ctx context.Context, model, input string) (string, error) {
	text, err := p.post(ctx, model, input)
	if !errors.Is(err, errModelLoading) {
		return text, err
	}

	logger.Info("hugging face model is loading, retrying", zap.String("model", model), zap.Duration("delay", p.retryDelay))
	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	return p.post(ctx, model, input)
}

func (p *HuggingFaceProvider) post(ctx context.Context, model, input string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs:     input,
		Parameters: p.params,
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", errModelLoading
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("hugging face api error: %d - %s", resp.StatusCode, snippet(data, 200))
	}
	return parseGeneratedText(data)
}

// parseGeneratedText 兼容三种返回格式：
// [{"generated_text": "..."}]、{"generated_text": "..."}、["..."]
func parseGeneratedText(data []byte) (string, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return "", ErrEmptyResponse
		}
		var obj struct {
			GeneratedText string `json:"generated_text"`
		}
		if err := json.Unmarshal(list[0], &obj); err == nil && strings.TrimSpace(obj.GeneratedText) != "" {
			return strings.TrimSpace(obj.GeneratedText), nil
		}
		var s string
		if err := json.Unmarshal(list[0], &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
		return "", fmt.Errorf("unexpected response format: %s", snippet(data, 200))
	}

	var obj struct {
		GeneratedText string `json:"generated_text"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("unexpected response format: %s", snippet(data, 200))
	}
	if text := strings.TrimSpace(obj.GeneratedText); text != "" {
		return text, nil
	}
	if obj.Error != "" {
		return "", fmt.Errorf("hugging face api error: %s", obj.Error)
	}
	return "", ErrEmptyResponse
}

func snippet(data []byte, n int) string {
	s := string(data)
	if len(s) > n {
		return s[:n]
	}
	return s
}
