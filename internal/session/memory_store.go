package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// MemoryStore 进程内会话存储，适合单实例部署和开发环境
type MemoryStore struct {
	items *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Create 创建会话，令牌为随机UUID
func (s *MemoryStore) Create(ctx context.Context, accessToken string, user model.User) (string, *Session, error) {
	now := time.Now()
	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		User:        user,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	s.items.Set(sess.ID, *sess, s.ttl)
	return sess.ID, sess, nil
}

// Get 读取会话，返回副本
func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	value, found := s.items.Get(token)
	if !found {
		return nil, ErrNotFound
	}
	sess := value.(Session)
	return &sess, nil
}

// Delete 删除会话
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.items.Delete(token)
	return nil
}

