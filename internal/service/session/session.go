// Package session 提供聊天会话的短期上下文存储
package session

import (
	"context"
	"sync"
	"time"
)

// DefaultHistoryLimit 每个会话保留的最大交互条数
const DefaultHistoryLimit = 10

// Role 交互角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Exchange 一条用户或助手消息，追加后不再修改
type Exchange struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store 会话上下文存储
// 实现必须保证每个会话最多保留 limit 条，超出时丢弃最旧的
type Store interface {
	History(ctx context.Context, sessionID string) ([]Exchange, error)
	Append(ctx context.Context, sessionID string, exchanges ...Exchange) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore 进程内存储，进程退出即丢失
type MemoryStore struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string][]Exchange
}

// NewMemoryStore 创建内存存储，limit <= 0 时使用默认值
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryStore{
		limit:    limit,
		sessions: make(map[string][]Exchange),
	}
}

// History 返回会话历史的副本，不存在的会话返回空
func (m *MemoryStore) History(_ context.Context, sessionID string) ([]Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Exchange(nil), m.sessions[sessionID]...), nil
}

// Append 追加并裁剪到最近 limit 条
func (m *MemoryStore) Append(_ context.Context, sessionID string, exchanges ...Exchange) error {
	if len(exchanges) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], exchanges...)
	if over := len(history) - m.limit; over > 0 {
		// 复制一份，避免底层数组无限增长
		history = append([]Exchange(nil), history[over:]...)
	}
	m.sessions[sessionID] = history
	return nil
}

// Clear 删除会话
func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Len 当前会话数
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
