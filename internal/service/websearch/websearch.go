// Package websearch 为旅行查询提供网页搜索
// 搜索引擎不可用或没有结果时返回固定的目的地建议
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/tool"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/logger"
)

// 结果来源
const (
	SourceDuckDuckGo  = "duckduckgo"
	SourceSuggestions = "suggestions"
)

// 结果类型
const (
	TypeWeb         = "web"
	TypeTravelGuide = "travel_guide"
	TypeStay        = "accommodation"
	TypeActivities  = "activities"
)

// Result 搜索结果
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Type        string `json:"type"`
}

type textSearchRequest struct {
	Query string `json:"query"`
}

type textSearchResponse struct {
	Message string `json:"message"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Summary string `json:"summary"`
	} `json:"results"`
}

// Service 网页搜索服务
type Service struct {
	tool    tool.InvokableTool
	timeout time.Duration
}

// NewService 按配置创建 DuckDuckGo 搜索
// 未启用或创建失败时只返回固定建议
func NewService(ctx context.Context, cfg *config.WebSearchConfig) *Service {
	if !cfg.Enabled {
		return &Service{}
	}
	t, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web for travel information about a destination.",
		MaxResults: cfg.MaxResults,
	})
	if err != nil {
		logger.Warn("web search tool unavailable", zap.Error(err))
		return &Service{}
	}
	return NewServiceFrom(t, cfg.TimeoutDuration())
}

// NewServiceFrom 使用已有的搜索工具
func NewServiceFrom(t tool.InvokableTool, timeout time.Duration) *Service {
	return &Service{tool: t, timeout: timeout}
}

// Enabled 是否接入了搜索引擎
func (s *Service) Enabled() bool {
	return s.tool != nil
}

// Search 返回结果和来源，从不返回错误
func (s *Service) Search(ctx context.Context, query string) ([]Result, string) {
	query = strings.TrimSpace(query)
	if s.tool != nil && query != "" {
		results, err := s.searchWeb(ctx, query)
		switch {
		case err != nil:
			logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		case len(results) > 0:
			return results, SourceDuckDuckGo
		default:
			logger.Debug("web search returned nothing", zap.String("query", query))
		}
	}
	return TravelSuggestions(query), SourceSuggestions
}

func (s *Service) searchWeb(ctx context.Context, query string) ([]Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args, err := json.Marshal(textSearchRequest{Query: query})
	if err != nil {
		return nil, err
	}
	out, err := s.tool.InvokableRun(ctx, string(args))
	if err != nil {
		return nil, fmt.Errorf("invoke search tool: %w", err)
	}

	var resp textSearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:       r.Title,
			Description: r.Summary,
			URL:         r.URL,
			Type:        TypeWeb,
		})
	}
	return results, nil
}

// TravelSuggestions 目的地的固定建议：攻略、住宿、活动
func TravelSuggestions(query string) []Result {
	slug := strings.Join(strings.Fields(query), "-")
	return []Result{
		{
			Title:       fmt.Sprintf("Visit %s - Travel Guide", query),
			Description: fmt.Sprintf("Discover the best places to visit in %s. Find hotels, restaurants, and attractions.", query),
			URL:         "https://www.example-travel-site.com/destinations/" + slug,
			Type:        TypeTravelGuide,
		},
		{
			Title:       fmt.Sprintf("Best Hotels in %s", query),
			Description: fmt.Sprintf("Find and book the perfect hotel in %s. Compare prices and read reviews.", query),
			URL:         "https://www.example-booking-site.com/hotels/" + slug,
			Type:        TypeStay,
		},
		{
			Title:       fmt.Sprintf("Things to Do in %s", query),
			Description: fmt.Sprintf("Explore top attractions, activities, and experiences in %s.", query),
			URL:         "https://www.example-activities-site.com/things-to-do/" + slug,
			Type:        TypeActivities,
		},
	}
}
