package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vera-byte/vgo-booking/internal/i18n"
	"github.com/vera-byte/vgo-booking/internal/middleware"
	"github.com/vera-byte/vgo-booking/internal/module"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

// Name 模块名称，同时是路由前缀 /auth
const Name = "auth"

// Module 认证模块
// 登录时调用后端 auth/login 并创建会话；登出销毁会话
type Module struct {
	client        client.BackendClient
	sessions      session.Store
	logger        *zap.Logger
	cookieName    string
	secure        bool
	ttl           time.Duration
	exposeDetails bool
	initialized   bool
}

// NewModule 创建认证模块实例
func NewModule() *Module {
	return &Module{}
}

// Factory 认证模块工厂
func Factory() module.ModuleFactory {
	return module.FactoryFunc{
		Type: Name,
		New:  func() (module.Module, error) { return NewModule(), nil },
	}
}

// Name 获取模块名称
func (m *Module) Name() string {
	return Name
}

// Version 获取模块版本
func (m *Module) Version() string {
	return "1.0.0"
}

// Description 获取模块描述
func (m *Module) Description() string {
	return "Login, logout and current session"
}

// Initialize 初始化模块
func (m *Module) Initialize(ctx context.Context, deps module.Deps) error {
	if deps.Sessions == nil {
		return fmt.Errorf("auth module requires a session store")
	}
	if deps.Config == nil {
		return fmt.Errorf("auth module requires configuration")
	}

	m.client = deps.Client
	m.sessions = deps.Sessions
	m.logger = deps.Logger
	m.cookieName = deps.Config.Session.CookieName
	m.secure = deps.Config.Session.Secure
	m.ttl = deps.Config.SessionTTL()
	m.exposeDetails = deps.Config.IsDevelopment()
	m.initialized = true

	m.logger.Info("Auth module initialized",
		zap.String("cookie", m.cookieName),
		zap.Duration("ttl", m.ttl))
	return nil
}

// RegisterRoutes 注册模块路由
func (m *Module) RegisterRoutes(router *gin.RouterGroup) error {
	// 登录路由（公开）
	router.POST("/login", m.loginHandler())

	// 需要会话的路由
	authed := router.Group("")
	authed.Use(middleware.RequireSession(m.exposeDetails))
	{
		authed.POST("/logout", m.logoutHandler())
		authed.GET("/session", m.sessionHandler())
	}
	return nil
}

// HealthCheck 健康检查
func (m *Module) HealthCheck(ctx context.Context) error {
	if !m.initialized {
		return fmt.Errorf("auth module not initialized")
	}
	if m.client == nil || m.client.BaseURL() == "" {
		return fmt.Errorf("backend URL not configured")
	}
	return nil
}

// Shutdown 关闭模块，会话存储由上层持有并关闭
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}

// loginHandler 登录处理器
func (m *Module) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			proxy.Abort(c, proxy.BadRequest(i18n.T(i18n.InvalidCredentials)), m.exposeDetails)
			return
		}

		if m.client == nil || m.client.BaseURL() == "" {
			m.logger.Error("Backend URL is not configured")
			proxy.Abort(c, proxy.Misconfigured(), m.exposeDetails)
			return
		}

		resp, err := m.client.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			m.logger.Warn("Login failed", zap.String("username", req.Username), zap.Error(err))
			var statusErr *client.StatusError
			if errors.As(err, &statusErr) {
				err = proxy.Upstream(statusErr.Status, statusErr.Body, i18n.T(i18n.InvalidCredentials))
			}
			proxy.Abort(c, err, m.exposeDetails)
			return
		}

		if resp.BearerToken() == "" || resp.User == nil {
			m.logger.Error("Login response without token or user", zap.String("username", req.Username))
			proxy.Abort(c, proxy.Upstream(http.StatusInternalServerError, nil, i18n.T(i18n.SessionFailed)), m.exposeDetails)
			return
		}

		switch resp.User.Status {
		case model.StatusPending:
			proxy.Abort(c, proxy.ForbiddenWith(i18n.T(i18n.UserPending)), m.exposeDetails)
			return
		case model.StatusRejected:
			proxy.Abort(c, proxy.ForbiddenWith(i18n.T(i18n.UserRejected)), m.exposeDetails)
			return
		}

		token, sess, err := m.sessions.Create(c.Request.Context(), resp.BearerToken(), *resp.User)
		if err != nil {
			m.logger.Error("Failed to create session", zap.Error(err))
			proxy.Abort(c, proxy.Upstream(http.StatusInternalServerError, nil, i18n.T(i18n.SessionFailed)), m.exposeDetails)
			return
		}

		m.setCookie(c, token, int(m.ttl.Seconds()))
		m.logger.Info("User logged in",
			zap.Int64("user_id", sess.User.ID),
			zap.String("role", string(sess.User.Role)))

		c.JSON(http.StatusOK, model.Envelope{
			Success: true,
			Data:    model.SessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt.Unix()},
			Message: i18n.T(i18n.LoginSuccess),
		})
	}
}

// logoutHandler 登出处理器
func (m *Module) logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.TokenFromRequest(c, m.cookieName)
		if err := m.sessions.Delete(c.Request.Context(), token); err != nil {
			// 会话已在上游失效时仍然清理Cookie
			m.logger.Warn("Failed to delete session", zap.Error(err))
		}

		m.setCookie(c, "", -1)
		c.JSON(http.StatusOK, model.Envelope{
			Success: true,
			Message: i18n.T(i18n.LogoutSuccess),
		})
	}
}

// sessionHandler 返回当前会话用户，不包含访问令牌
func (m *Module) sessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := session.FromContext(c)
		c.JSON(http.StatusOK, model.Envelope{
			Success: true,
			Data:    model.SessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt.Unix()},
		})
	}
}

func (m *Module) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}
