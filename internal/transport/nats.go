// Package transport 通过 NATS request/reply 暴露聊天助手
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ashwinyue/travacasa/internal/config"
	"github.com/ashwinyue/travacasa/internal/logger"
	"github.com/ashwinyue/travacasa/internal/service/chatbot"
)

// 错误码
const (
	ErrorParse           = "PARSE_ERROR"
	ErrorMessageRequired = "MESSAGE_REQUIRED"
	ErrorInternal        = "INTERNAL_ERROR"
)

const unavailableReply = "AI service unavailable. Please try again later."

// Chatter 处理一轮对话
type Chatter interface {
	Handle(ctx context.Context, req *chatbot.ChatRequest) (*chatbot.ChatResponse, error)
}

// Reply NATS 响应，字段与 HTTP 接口一致
type Reply struct {
	Success         bool                    `json:"success"`
	Message         string                  `json:"message"`
	AISource        string                  `json:"aiSource,omitempty"`
	DatabaseResults []chatbot.ListingResult `json:"databaseResults,omitempty"`
	HasDatabaseData bool                    `json:"hasDatabaseData"`
	SessionID       string                  `json:"sessionId,omitempty"`
	Intent          chatbot.Intent          `json:"intent,omitempty"`
	ErrorCode       string                  `json:"errorCode,omitempty"`
}

// NATSTransport 订阅聊天请求主题
type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	timeout time.Duration
	chat    Chatter
}

// NewNATSTransport 连接 NATS
func NewNATSTransport(cfg *config.Config, chat Chatter) (*NATSTransport, error) {
	timeout := time.Duration(cfg.NATS.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	conn, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.App.Name),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", cfg.NATS.URL))
	return newTransport(conn, cfg.NATS.Subject, timeout, chat), nil
}

func newTransport(conn *nats.Conn, subject string, timeout time.Duration, chat Chatter) *NATSTransport {
	return &NATSTransport{
		conn:    conn,
		subject: subject,
		timeout: timeout,
		chat:    chat,
	}
}

// Start 开始订阅
func (t *NATSTransport) Start() error {
	sub, err := t.conn.Subscribe(t.subject, func(msg *nats.Msg) {
		if err := msg.Respond(t.handle(msg.Data)); err != nil {
			logger.Warn("nats respond failed", zap.String("subject", msg.Subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", t.subject, err)
	}
	t.sub = sub

	logger.Info("subscribed to subject", zap.String("subject", t.subject))
	return nil
}

// handle 解析请求并返回编码后的响应
func (t *NATSTransport) handle(data []byte) []byte {
	var req chatbot.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("invalid nats request", zap.Error(err))
		return encode(&Reply{Message: "Invalid request format", ErrorCode: ErrorParse})
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	resp, err := t.chat.Handle(ctx, &req)
	switch {
	case errors.Is(err, chatbot.ErrMessageRequired):
		return encode(&Reply{Message: "Message is required", SessionID: req.SessionID, ErrorCode: ErrorMessageRequired})
	case err != nil:
		logger.Error("nats chat failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return encode(&Reply{Message: unavailableReply, SessionID: req.SessionID, ErrorCode: ErrorInternal})
	}

	return encode(&Reply{
		Success:         true,
		Message:         resp.Reply,
		AISource:        resp.Source,
		DatabaseResults: resp.Listings,
		HasDatabaseData: len(resp.Listings) > 0,
		SessionID:       resp.SessionID,
		Intent:          resp.Intent,
	})
}

func encode(r *Reply) []byte {
	data, err := json.Marshal(r)
	if err != nil {
		// Reply 只含可编码字段
		return []byte(`{"success":false,"message":"internal error","errorCode":"INTERNAL_ERROR"}`)
	}
	return data
}

// Close 取消订阅并关闭连接
func (t *NATSTransport) Close() error {
	if t.sub != nil {
		if err := t.sub.Unsubscribe(); err != nil {
			logger.Warn("nats unsubscribe failed", zap.Error(err))
		}
	}
	if t.conn != nil {
		t.conn.Close()
		logger.Info("NATS connection closed")
	}
	return nil
}
