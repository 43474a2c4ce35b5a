package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

// LoadSession 会话加载中间件
// 读取Cookie或Bearer中的会话令牌并写入上下文；令牌无效时不中止请求，由后续处理器决定是否需要会话
// 会话存储故障时返回 500
// 参数: store 会话存储, cookieName Cookie名称, logger 日志器
func LoadSession(store session.Store, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.TokenFromRequest(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		if errors.Is(err, session.ErrNotFound) {
			c.Next()
			return
		}
		if err != nil {
			// 存储不可用时不能降级为匿名请求
			logger.Error("Failed to load session", zap.Error(err))
			proxy.Abort(c, proxy.Internal(err), false)
			return
		}

		session.Set(c, sess)
		c.Set("user_id", sess.User.ID)
		c.Next()
	}
}

// RequireSession 认证中间件，要求存在有效会话
// 参数: exposeDetails 是否输出错误详情
func RequireSession(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c)
		if !ok || !sess.Valid() {
			proxy.Abort(c, proxy.Unauthenticated(), exposeDetails)
			return
		}
		c.Next()
	}
}

// RequireRole 角色权限中间件
// 参数: roles 允许的角色列表
func RequireRole(exposeDetails bool, roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c)
		if !ok || !sess.Valid() {
			proxy.Abort(c, proxy.Unauthenticated(), exposeDetails)
			return
		}

		for _, role := range roles {
			if sess.User.Role == role {
				c.Next()
				return
			}
		}
		proxy.Abort(c, proxy.Forbidden(), exposeDetails)
	}
}
