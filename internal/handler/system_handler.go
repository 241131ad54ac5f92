package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service"
)

// PingFunc 检查下游依赖
type PingFunc func(ctx context.Context) error

// SystemHandler 系统处理器
type SystemHandler struct {
	svc  *service.Services
	ping PingFunc
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services, ping PingFunc) *SystemHandler {
	return &SystemHandler{svc: svc, ping: ping}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			ServiceUnavailable(c, "database unavailable")
			return
		}
	}

	Success(c, gin.H{
		"status":  "ok",
		"name":    h.svc.Config.App.Name,
		"version": h.svc.Config.App.Version,
	})
}
