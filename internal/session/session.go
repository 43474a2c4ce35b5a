package session

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// ErrNotFound 会话不存在、已过期或令牌无效
var ErrNotFound = errors.New("session not found")

// Session 登录会话
// AccessToken 是后端签发的访问令牌，代理时作为 Bearer 凭证
type Session struct {
	ID          string     `json:"id"`
	AccessToken string     `json:"accessToken"`
	User        model.User `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}

// Valid 会话是否可用于代理请求
func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.AccessToken) != ""
}

// Store 会话存储接口，实现必须支持并发调用
type Store interface {
	// Create 创建会话并返回交给客户端的会话令牌
	Create(ctx context.Context, accessToken string, user model.User) (string, *Session, error)

	// Get 根据会话令牌读取会话
	Get(ctx context.Context, token string) (*Session, error)

	// Delete 销毁会话
	Delete(ctx context.Context, token string) error
}

// NewStore 按配置创建会话存储
// 参数: cfg 会话配置, ttl 会话有效期
// 返回值: Store 会话存储, error 错误信息
func NewStore(cfg config.SessionConfig, ttl time.Duration) (Store, error) {
	switch cfg.Store {
	case "cookie":
		return NewJWTStore(cfg.Secret, ttl), nil
	case "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPass,
		})
		return NewRedisStore(client, ttl, cfg.Prefix), nil
	default:
		return nil, errors.Errorf("unsupported session store: %s", cfg.Store)
	}
}

const contextKey = "session"

// Set 将会话写入gin上下文
func Set(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}

// FromContext 从gin上下文读取会话
func FromContext(c *gin.Context) (*Session, bool) {
	value, exists := c.Get(contextKey)
	if !exists {
		return nil, false
	}
	s, ok := value.(*Session)
	return s, ok && s != nil
}

// TokenFromRequest 读取会话令牌：优先Cookie，其次 Authorization: Bearer
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
