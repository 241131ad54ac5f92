package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service/callback"
	"github.com/ashwinyue/travacasa/internal/service/chatbot"
)

// newProviders 按顺序创建回复提供者：本地模型、Hugging Face、OpenAI 兼容模型
// 未配置的提供者直接跳过，创建失败只记录日志
func newProviders(ctx context.Context, cfg *config.Config) []chatbot.Provider {
	var providers []chatbot.Provider

	if cfg.AI.Ollama.BaseURL != "" {
		p, err := chatbot.NewOllamaProvider(&cfg.AI.Ollama, nil)
		if err != nil {
			logger.Warn("skip ollama provider", zap.Error(err))
		} else {
			providers = append(providers, p)
		}
	}

	if cfg.AI.HuggingFace.APIKey != "" && len(cfg.AI.HuggingFace.Models) > 0 {
		providers = append(providers, chatbot.NewHuggingFaceProvider(&cfg.AI.HuggingFace, nil))
	}

	if cfg.AI.OpenAI.APIKey != "" {
		p, err := chatbot.NewChatModelProvider(ctx, &cfg.AI.OpenAI, callback.NewLogger(cfg.App.Debug))
		if err != nil {
			logger.Warn("skip openai provider", zap.Error(err))
		} else {
			providers = append(providers, p)
		}
	}

	return providers
}
