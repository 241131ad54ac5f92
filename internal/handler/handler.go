package handler

import (
	"github.com/ashwinyue/travacasa/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Chatbot *ChatbotHandler
	Listing *ListingHandler
	Search  *SearchHandler
	System  *SystemHandler
}

// NewHandlers 创建所有处理器
// ping 用于健康检查，可为 nil
func NewHandlers(svc *service.Services, ping PingFunc) *Handlers {
	return &Handlers{
		Chatbot: NewChatbotHandler(svc),
		Listing: NewListingHandler(svc),
		Search:  NewSearchHandler(svc),
		System:  NewSystemHandler(svc, ping),
	}
}
