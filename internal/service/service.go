package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/service/chatbot"
	"github.com/ashwinyue/travacasa/internal/service/listing"
	"github.com/ashwinyue/travacasa/internal/service/session"
	"github.com/ashwinyue/travacasa/internal/service/voice"
	"github.com/ashwinyue/travacasa/internal/service/websearch"
)

// Services 服务集合
type Services struct {
	Chatbot   *chatbot.Service
	Listing   *listing.Service
	WebSearch *websearch.Service
	Voice     *voice.Service

	Config   *config.Config
	Sessions session.Store
	// SessionBackend memory 或 redis
	SessionBackend string
}

// NewServices 创建所有服务
// redisClient 为 nil 时会话历史保存在进程内存中
func NewServices(ctx context.Context, repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) *Services {
	sessions, backend := newSessionStore(cfg, redisClient)

	search := chatbot.NewListingSearch(repo.Listing, cfg.Chatbot.SearchLimit, chatbot.PriceBounds{
		BudgetMax: cfg.Chatbot.BudgetPriceMax,
		LuxuryMin: cfg.Chatbot.LuxuryPriceMin,
	})

	providers := newProviders(ctx, cfg)
	logger.Info("chatbot providers initialized", zap.Int("count", len(providers)), zap.String("session_store", backend))

	generator := chatbot.NewGenerator(
		chatbot.NewPromptBuilder(cfg.Chatbot.PromptHistory),
		chatbot.NewFallback(nil),
		providers...,
	).WithTimeout(cfg.GenerateBudget())

	web := websearch.NewService(ctx, &cfg.WebSearch)

	return &Services{
		Chatbot:        chatbot.NewService(sessions, search, generator),
		Listing:        listing.NewService(repo.Listing),
		WebSearch:      web,
		Voice:          voice.NewService(repo.Listing, web),
		Config:         cfg,
		Sessions:       sessions,
		SessionBackend: backend,
	}
}

// newSessionStore 选择会话存储
func newSessionStore(cfg *config.Config, redisClient *redis.Client) (session.Store, string) {
	if redisClient != nil {
		ttl := time.Duration(cfg.Redis.SessionTTL) * time.Second
		return session.NewRedisStore(redisClient, cfg.Chatbot.HistoryLimit, ttl), "redis"
	}
	return session.NewMemoryStore(cfg.Chatbot.HistoryLimit), "memory"
}
