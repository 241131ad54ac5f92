// Package chatbot 实现 TravaCasa 聊天机器人的请求编排
// 意图分类、实体抽取、房源检索、多提供者回复生成和会话历史
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service/session"
)

// ErrMessageRequired 消息为空或只有标点空白
var ErrMessageRequired = errors.New("message is required")

// ChatRequest 聊天请求
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	Context   []any  `json:"context,omitempty"`
}

// ChatResponse 聊天结果
type ChatResponse struct {
	SessionID string          `json:"sessionId"`
	Reply     string          `json:"message"`
	Source    string          `json:"aiSource"`
	Intent    Intent          `json:"intent"`
	Entities  Entities        `json:"entities,omitempty"`
	SearchRan bool            `json:"-"`
	Listings  []ListingResult `json:"databaseResults,omitempty"`
}

// Searcher 房源检索
type Searcher interface {
	Search(ctx context.Context, message string) ([]ListingResult, error)
}

// Service 聊天机器人编排
type Service struct {
	store     session.Store
	search    Searcher
	generator *Generator
	now       func() time.Time
	newID     func() string
}

// NewService 创建聊天机器人服务
func NewService(store session.Store, search Searcher, generator *Generator) *Service {
	return &Service{
		store:     store,
		search:    search,
		generator: generator,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Handle 处理一条消息
// 顺序：校验、读取历史、意图、实体、房源检索、生成回复、写回历史
func (s *Service) Handle(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if !hasContent(req.Message) {
		return nil, ErrMessageRequired
	}
	message := strings.TrimSpace(req.Message)

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	intent := Classify(message, history)
	entities := Extract(message)

	gen := &GenerateRequest{
		Message:  message,
		Intent:   intent,
		Entities: entities,
		History:  history,
		Context:  req.Context,
	}
	if s.search != nil && IsPropertyQuery(message, intent) {
		listings, err := s.search.Search(ctx, message)
		if err != nil {
			return nil, err
		}
		gen.SearchRan = true
		gen.Listings = listings
	}

	reply, source := s.generator.Generate(ctx, gen)

	now := s.now()
	err = s.store.Append(ctx, sessionID,
		session.Exchange{Role: session.RoleUser, Text: message, Intent: string(intent), Timestamp: now},
		session.Exchange{Role: session.RoleAssistant, Text: reply, Intent: string(intent), Timestamp: now},
	)
	if err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	logger.Info("chatbot reply",
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent)),
		zap.String("source", source),
		zap.Int("listings", len(gen.Listings)),
	)

	return &ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Source:    source,
		Intent:    intent,
		Entities:  entities,
		SearchRan: gen.SearchRan,
		Listings:  gen.Listings,
	}, nil
}

// ClearSession 清空会话历史
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Providers 已配置的外部提供者
func (s *Service) Providers() []string {
	return s.generator.Providers()
}

// hasContent 至少包含一个既非标点也非空白的字符
func hasContent(message string) bool {
	return strings.IndexFunc(message, func(r rune) bool {
		return !unicode.IsPunct(r) && !unicode.IsSpace(r)
	}) >= 0
}
