package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 会话在 Redis 中的默认过期时间
	defaultSessionTTL = 24 * time.Hour
	// Redis key 前缀
	sessionKeyPrefix = "travacasa:session:"
)

// RedisStore 基于 Redis 列表的会话存储，用于多实例部署
// 每个会话一个 list，RPUSH 后 LTRIM 保留最近 limit 条
type RedisStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, limit int, ttl time.Duration) *RedisStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{client: client, limit: limit, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// History 读取会话历史，跳过无法解析的条目
func (s *RedisStore) History(ctx context.Context, sessionID string) ([]Exchange, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return decodeExchanges(raw), nil
}

// Append 追加并裁剪，同时刷新过期时间
func (s *RedisStore) Append(ctx context.Context, sessionID string, exchanges ...Exchange) error {
	if len(exchanges) == 0 {
		return nil
	}

	values, err := encodeExchanges(exchanges)
	if err != nil {
		return err
	}

	key := sessionKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-s.limit), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Clear 删除会话
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func encodeExchanges(exchanges []Exchange) ([]interface{}, error) {
	values := make([]interface{}, 0, len(exchanges))
	for _, e := range exchanges {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal exchange: %w", err)
		}
		values = append(values, data)
	}
	return values, nil
}

func decodeExchanges(raw []string) []Exchange {
	exchanges := make([]Exchange, 0, len(raw))
	for _, item := range raw {
		var e Exchange
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		exchanges = append(exchanges, e)
	}
	return exchanges
}
