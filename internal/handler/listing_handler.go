package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service"
	"github.com/ashwinyue/travacasa/internal/service/listing"
)

// ListingHandler 房源处理器
type ListingHandler struct {
	svc *service.Services
}

// NewListingHandler 创建房源处理器
func NewListingHandler(svc *service.Services) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// getPagination 获取分页参数，非法值交给服务层归一化
func getPagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return
}

// ListListings 列出房源
// GET /api/listings?search=&page=&page_size=
func (h *ListingHandler) ListListings(c *gin.Context) {
	page, size := getPagination(c)
	result, err := h.svc.Listing.List(c.Request.Context(), &listing.ListRequest{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		logger.Error("list listings failed", zap.Error(err))
		InternalServerError(c, "Failed to load listings")
		return
	}

	Success(c, gin.H{
		"pagination":     newPagination(result.Items, result.Total, result.Page, result.Size),
		"search":         c.Query("search"),
		"search_history": result.SearchHistory,
	})
}

// GetListing 获取房源详情
// GET /api/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	view, err := h.svc.Listing.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, listing.ErrNotFound) {
		NotFound(c, "Listing you requested for does not exist!")
		return
	}
	if err != nil {
		logger.Error("get listing failed", zap.String("id", c.Param("id")), zap.Error(err))
		InternalServerError(c, "Failed to load listing")
		return
	}
	Success(c, view)
}

// PopularSearches 热门地点和国家
// GET /api/popular-searches
func (h *ListingHandler) PopularSearches(c *gin.Context) {
	popular, err := h.svc.Listing.Popular(c.Request.Context())
	if err != nil {
		logger.Error("popular searches failed", zap.Error(err))
		InternalServerError(c, "Failed to load popular searches")
		return
	}
	Success(c, popular)
}
