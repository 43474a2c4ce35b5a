package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// RedisStore Redis会话存储，多实例部署共享会话
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore 创建Redis会话存储
// 参数:
//   - client: Redis客户端
//   - ttl: 会话有效期
//   - prefix: key前缀
func NewRedisStore(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Create 创建会话
func (s *RedisStore) Create(ctx context.Context, accessToken string, user model.User) (string, *Session, error) {
	now := time.Now()
	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		User:        user,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", nil, errors.Wrap(err, "encode session")
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return "", nil, errors.Wrap(err, "store session")
	}
	return sess.ID, sess, nil
}

// Get 读取会话
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &sess, nil
}

// Delete 删除会话
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

// Ping 检查Redis连接，用于健康检查
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(token string) string {
	return fmt.Sprintf("%s:%s", s.prefix, token)
}
