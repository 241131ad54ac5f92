package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service"
	"github.com/ashwinyue/travacasa/internal/service/websearch"
)

const (
	msgQueryRequired      = "Search query is required"
	msgTranscriptRequired = "Transcript is required"
)

// SearchHandler 网页和语音搜索处理器
type SearchHandler struct {
	svc *service.Services
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(svc *service.Services) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// WebSearchResponse 网页搜索响应
type WebSearchResponse struct {
	Success bool               `json:"success"`
	Query   string             `json:"query"`
	Type    string             `json:"type"`
	Source  string             `json:"source"`
	Results []websearch.Result `json:"results"`
	Count   int                `json:"count"`
}

// WebSearch 搜索目的地的旅行信息
// GET /api/web-search?query=&type=travel
func (h *SearchHandler) WebSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		BadRequest(c, msgQueryRequired)
		return
	}

	results, source := h.svc.WebSearch.Search(c.Request.Context(), query)
	c.JSON(http.StatusOK, WebSearchResponse{
		Success: true,
		Query:   query,
		Type:    c.DefaultQuery("type", "travel"),
		Source:  source,
		Results: results,
		Count:   len(results),
	})
}

// VoiceSearchRequest 语音搜索请求
type VoiceSearchRequest struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	// Timestamp 客户端可能传毫秒数或 ISO 字符串，只用于日志
	Timestamp interface{} `json:"timestamp"`
}

// VoiceSearch 记录语音搜索
// POST /api/voice-search
func (h *SearchHandler) VoiceSearch(c *gin.Context) {
	req, ok := bindVoiceSearch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"message":             "Voice search analytics recorded",
		"processedTranscript": req.Transcript,
	})
}

// VoiceSearchEnhanced 处理语音查询并返回房源、网页结果和建议
// POST /api/voice-search-enhanced
func (h *SearchHandler) VoiceSearchEnhanced(c *gin.Context) {
	req, ok := bindVoiceSearch(c)
	if !ok {
		return
	}

	result, err := h.svc.Voice.Search(c.Request.Context(), req.Transcript)
	if err != nil {
		logger.Error("voice search failed", zap.String("transcript", req.Transcript), zap.Error(err))
		InternalServerError(c, "Failed to process enhanced voice search")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "Enhanced voice search processed",
		"originalTranscript": req.Transcript,
		"processedQuery":     result.Query,
		"confidence":         req.Confidence,
		"databaseResults":    result.Listings,
		"webResults":         result.Web,
		"webSource":          result.WebSource,
		"suggestions":        result.Suggestions,
	})
}

// bindVoiceSearch 解析请求并记录语音搜索日志，失败时已写入响应
func bindVoiceSearch(c *gin.Context) (*VoiceSearchRequest, bool) {
	var req VoiceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Transcript) == "" {
		BadRequest(c, msgTranscriptRequired)
		return nil, false
	}

	logger.Info("voice search",
		zap.String("transcript", req.Transcript),
		zap.Float64("confidence", req.Confidence),
		zap.Any("timestamp", req.Timestamp),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.String("client_ip", c.ClientIP()),
	)
	return &req, true
}
