package chatbot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service/session"
)

// GenerateRequest 生成回复需要的上下文
type GenerateRequest struct {
	Message  string
	Intent   Intent
	Entities Entities
	History  []session.Exchange
	// Context 客户端附带的上下文
	Context []any
	// SearchRan 是否执行过房源检索，Listings 为空时提示词会说明未找到
	SearchRan bool
	Listings  []ListingResult
}

// Generator 按顺序尝试各提供者，全部未命中时使用兜底回复
type Generator struct {
	providers []Provider
	prompts   *PromptBuilder
	fallback  *Fallback
	// timeout 整个提供者链的总时限，0 表示只受调用方 ctx 约束
	timeout time.Duration
}

// NewGenerator 创建回复生成器
func NewGenerator(prompts *PromptBuilder, fallback *Fallback, providers ...Provider) *Generator {
	if fallback == nil {
		fallback = NewFallback(nil)
	}
	return &Generator{providers: providers, prompts: prompts, fallback: fallback}
}

// WithTimeout 设置提供者链的总时限，超时后直接使用兜底回复
func (g *Generator) WithTimeout(d time.Duration) *Generator {
	g.timeout = d
	return g
}

// Generate 返回回复和来源标签，从不返回错误
func (g *Generator) Generate(ctx context.Context, req *GenerateRequest) (string, string) {
	if len(g.providers) > 0 {
		pctx, cancel := ctx, context.CancelFunc(func() {})
		if g.timeout > 0 {
			pctx, cancel = context.WithTimeout(ctx, g.timeout)
		}
		text, source, ok := g.tryProviders(pctx, req)
		cancel()
		if ok {
			return text, source
		}
	}
	return g.fallbackReply(req), SourceFallback
}

// fallbackReply 选择兜底回复
// 没有匹配房源时：行程规划且天数和目的地齐全给出行程，带价格词的检索改用价格模板
func (g *Generator) fallbackReply(req *GenerateRequest) string {
	if len(req.Listings) == 0 {
		switch req.Intent {
		case IntentTravelPlanning:
			if trip := ExtractTripDetails(req.Message, req.Entities); trip.Complete() {
				return GenerateItinerary(trip.Destination, trip.Days)
			}
		case IntentSearch:
			if HasPriceSignal(req.Message) {
				return g.fallback.Respond(IntentPricing, req.Entities, nil)
			}
		}
	}
	return g.fallback.Respond(req.Intent, req.Entities, req.Listings)
}

func (g *Generator) tryProviders(ctx context.Context, req *GenerateRequest) (string, string, bool) {
	prompt, err := g.prompts.Build(req)
	if err != nil {
		logger.Error("build prompt failed", zap.Error(err))
		return "", "", false
	}

	for _, p := range g.providers {
		if ctx.Err() != nil {
			logger.Warn("provider chain deadline reached", zap.String("skipped", p.Name()), zap.Error(ctx.Err()))
			break
		}
		text, err := p.Attempt(ctx, prompt)
		if err == nil && text != "" {
			logger.Debug("provider answered", zap.String("provider", p.Name()))
			return text, p.Source(), true
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		logger.Warn("provider miss", zap.String("provider", p.Name()), zap.Error(err))
	}
	return "", "", false
}

// Providers 已配置的提供者名称，按尝试顺序
func (g *Generator) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for _, p := range g.providers {
		names = append(names, p.Name())
	}
	return names
}
