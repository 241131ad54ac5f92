package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/travacasa/internal/handler"
	"github.com/ashwinyue/travacasa/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	api := r.Group("/api")
	{
		// Chatbot 聊天助手
		chatbot := api.Group("/chatbot")
		{
			chatbot.POST("", h.Chatbot.Chat)
			chatbot.GET("/status", h.Chatbot.Status)
			chatbot.DELETE("/sessions/:id", h.Chatbot.ClearSession)
		}

		// Listing 房源
		listings := api.Group("/listings")
		{
			listings.GET("", h.Listing.ListListings)
			listings.GET("/:id", h.Listing.GetListing)
		}

		api.GET("/popular-searches", h.Listing.PopularSearches)

		// 网页和语音搜索
		api.GET("/web-search", h.Search.WebSearch)
		api.POST("/voice-search", h.Search.VoiceSearch)
		api.POST("/voice-search-enhanced", h.Search.VoiceSearchEnhanced)
	}

	return r
}
