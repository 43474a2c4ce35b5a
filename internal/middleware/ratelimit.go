package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vera-byte/vgo-booking/internal/i18n"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

// RateLimiter 速率限制器接口
type RateLimiter interface {
	// Allow 检查是否允许请求，同时返回窗口内剩余次数
	Allow(ctx context.Context, key string) (bool, int, error)
	// Reset 重置指定key的限制
	Reset(ctx context.Context, key string) error
}

// 滑动窗口：清理过期记录、计数、未超限时写入本次请求
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]
	local ttl = tonumber(ARGV[5])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
	local current = redis.call('ZCARD', key)
	if current >= limit then
		return {0, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, ttl)
	return {1, limit - current - 1}
`)

// RedisRateLimiter Redis实现的速率限制器，多实例共享计数
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter 创建Redis速率限制器
// 参数:
//   - client: Redis客户端
//   - limit: 窗口内允许的请求数
//   - window: 时间窗口
//   - prefix: key前缀
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow 检查是否允许请求
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := time.Now()
	windowStart := now.Add(-r.window).UnixMicro()
	member := uuid.NewString()
	ttl := int(r.window.Seconds()) + 1

	result, err := slidingWindow.Run(ctx, r.client, []string{r.key(key)},
		windowStart, now.UnixMicro(), r.limit, member, ttl).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	return result[0] == 1, int(result[1]), nil
}

// Reset 重置指定key的限制
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisRateLimiter) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// MemoryRateLimiter 内存实现的速率限制器，仅适用于单实例
type MemoryRateLimiter struct {
	limit     int
	window    time.Duration
	mu        sync.Mutex
	requests  map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryRateLimiter 创建内存速率限制器
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow 检查是否允许请求
func (m *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.window)
	m.sweep(now, windowStart)

	valid := m.requests[key][:0]
	for _, at := range m.requests[key] {
		if at.After(windowStart) {
			valid = append(valid, at)
		}
	}

	if len(valid) >= m.limit {
		m.requests[key] = valid
		return false, 0, nil
	}

	m.requests[key] = append(valid, now)
	return true, m.limit - len(valid) - 1, nil
}

// sweep 每个窗口清理一次已无有效记录的key
func (m *MemoryRateLimiter) sweep(now, windowStart time.Time) {
	if now.Sub(m.lastSweep) < m.window {
		return
	}
	m.lastSweep = now
	for key, times := range m.requests {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(m.requests, key)
		}
	}
}

// Reset 重置指定key的限制
func (m *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, key)
	return nil
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Type      string // "redis" or "memory"
	Limit     int
	Window    time.Duration
	Prefix    string
	RedisAddr string
	RedisDB   int
}

// NewRateLimiter 创建新的限流器
// 参数: config 限流配置
// 返回值: RateLimiter 限流器接口, error 错误信息
func NewRateLimiter(config RateLimitConfig) (RateLimiter, error) {
	switch config.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: config.RedisAddr,
			DB:   config.RedisDB,
		})
		return NewRedisRateLimiter(client, config.Limit, config.Window, config.Prefix), nil
	case "memory":
		return NewMemoryRateLimiter(config.Limit, config.Window), nil
	default:
		return nil, fmt.Errorf("unsupported rate limiter type: %s", config.Type)
	}
}

// KeyFunc 生成限流key的函数类型
type KeyFunc func(c *gin.Context) string

// ClientIPKey 基于客户端IP的key
// 只有来自可信代理的 X-Forwarded-For 才会被采用，见 server.trusted_proxies
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// SessionKey 已登录时按用户限流，否则回退到IP
func SessionKey(c *gin.Context) string {
	if sess, ok := session.FromContext(c); ok {
		return fmt.Sprintf("user:%d", sess.User.ID)
	}
	return ClientIPKey(c)
}

// RateLimit 速率限制中间件
// 参数:
//   - limiter: 速率限制器
//   - keyFunc: key生成函数，为空时使用 ClientIPKey
//   - logger: 日志器
func RateLimit(limiter RateLimiter, keyFunc KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ClientIPKey
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("Rate limiter failed", zap.String("key", key), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
				Error:  i18n.T(i18n.RateLimiterFailed),
				Status: http.StatusInternalServerError,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:  i18n.T(i18n.TooManyRequests),
				Status: http.StatusTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
