package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service"
	"github.com/ashwinyue/travacasa/internal/service/chatbot"
)

const (
	msgMessageRequired    = "Message is required"
	msgServiceUnavailable = "AI service unavailable. Please try again later."
)

// ChatbotHandler 聊天机器人处理器
type ChatbotHandler struct {
	svc *service.Services
}

// NewChatbotHandler 创建聊天机器人处理器
func NewChatbotHandler(svc *service.Services) *ChatbotHandler {
	return &ChatbotHandler{svc: svc}
}

// ChatResponse 聊天接口响应
// databaseResults 只在执行过房源检索时出现，可能为空数组
type ChatResponse struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	AISource        string         `json:"aiSource"`
	DatabaseResults interface{}    `json:"databaseResults,omitempty"`
	HasDatabaseData bool           `json:"hasDatabaseData"`
	SessionID       string         `json:"sessionId"`
	Intent          chatbot.Intent `json:"intent"`
}

// Chat 发送消息
// POST /api/chatbot
func (h *ChatbotHandler) Chat(c *gin.Context) {
	var req chatbot.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, msgMessageRequired)
		return
	}

	resp, err := h.svc.Chatbot.Handle(c.Request.Context(), &req)
	if errors.Is(err, chatbot.ErrMessageRequired) {
		BadRequest(c, msgMessageRequired)
		return
	}
	if err != nil {
		logger.Error("chatbot request failed", zap.String("session_id", req.SessionID), zap.Error(err))
		InternalServerError(c, msgServiceUnavailable)
		return
	}

	out := ChatResponse{
		Success:         true,
		Message:         resp.Reply,
		AISource:        resp.Source,
		HasDatabaseData: len(resp.Listings) > 0,
		SessionID:       resp.SessionID,
		Intent:          resp.Intent,
	}
	if resp.SearchRan {
		results := resp.Listings
		if results == nil {
			results = []chatbot.ListingResult{}
		}
		out.DatabaseResults = results
	}

	c.Header("X-Session-ID", resp.SessionID)
	c.JSON(http.StatusOK, out)
}

// Status 返回已配置的提供者
// GET /api/chatbot/status
func (h *ChatbotHandler) Status(c *gin.Context) {
	Success(c, gin.H{
		"providers":      h.svc.Chatbot.Providers(),
		"fallback":       true,
		"session_store":  h.svc.SessionBackend,
		"history_limit":  h.svc.Config.Chatbot.HistoryLimit,
		"search_enabled": true,
		"web_search":     h.svc.WebSearch != nil && h.svc.WebSearch.Enabled(),
	})
}

// ClearSession 清空会话历史
// DELETE /api/chatbot/sessions/:id
func (h *ChatbotHandler) ClearSession(c *gin.Context) {
	if err := h.svc.Chatbot.ClearSession(c.Request.Context(), c.Param("id")); err != nil {
		logger.Error("clear session failed", zap.String("session_id", c.Param("id")), zap.Error(err))
		InternalServerError(c, msgServiceUnavailable)
		return
	}
	NoContent(c)
}
