package proxy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/vera-byte/vgo-booking/internal/i18n"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

// Recorder 记录后端调用结果，status 为 0 表示连接失败
type Recorder interface {
	ObserveBackend(name string, status int, elapsed time.Duration)
}

// Deps 代理处理器依赖
type Deps struct {
	Client        client.BackendClient
	Logger        *zap.Logger
	Recorder      Recorder
	ExposeDetails bool
}

// RequestIDKey gin上下文中请求ID的键
const RequestIDKey = "request_id"

// Register 校验并注册一组描述符
// 参数: router gin路由组, descriptors 端点描述, deps 依赖
// 返回值: error 描述符非法时返回
func Register(router gin.IRoutes, descriptors []Descriptor, deps Deps) error {
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	for _, d := range descriptors {
		router.Handle(d.Method, d.Route, Handler(d, deps))
	}
	return nil
}

// Handler 根据描述符生成代理处理器
// 前置检查顺序：会话 → 角色 → 后端地址 → 请求体；任一失败都不会访问后端
func Handler(d Descriptor, deps Deps) gin.HandlerFunc {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("endpoint", d.Name))

	return func(c *gin.Context) {
		sess, ok := session.FromContext(c)
		if !ok || !sess.Valid() {
			Abort(c, Unauthenticated(), deps.ExposeDetails)
			return
		}

		if !d.Allows(sess.User.Role) {
			logger.Warn("Role not allowed",
				zap.Int64("user_id", sess.User.ID),
				zap.String("role", string(sess.User.Role)))
			Abort(c, Forbidden(), deps.ExposeDetails)
			return
		}

		if deps.Client == nil || deps.Client.BaseURL() == "" {
			logger.Error("Backend URL is not configured")
			Abort(c, Misconfigured(), deps.ExposeDetails)
			return
		}

		body, err := readBody(c, d)
		if err != nil {
			Abort(c, err, deps.ExposeDetails)
			return
		}

		path, err := renderPath(c, d)
		if err != nil {
			Abort(c, err, deps.ExposeDetails)
			return
		}

		req := client.Request{
			Method:    d.upstreamMethod(),
			Path:      path,
			RawQuery:  buildQuery(c, d.Query),
			Body:      body,
			Token:     sess.AccessToken,
			RequestID: c.GetString(RequestIDKey),
		}

		start := time.Now()
		resp, err := deps.Client.Do(c.Request.Context(), req)
		elapsed := time.Since(start)
		if err != nil {
			record(deps.Recorder, d.Name, 0, elapsed)
			logger.Error("Backend request failed",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Duration("latency", elapsed),
				zap.Error(err))
			Abort(c, err, deps.ExposeDetails)
			return
		}
		record(deps.Recorder, d.Name, resp.Status, elapsed)

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.Status),
			zap.Duration("latency", elapsed),
		}
		if !resp.Success() {
			logger.Warn("Backend responded with error", fields...)
			Abort(c, Upstream(resp.Status, resp.Body, d.FallbackError), deps.ExposeDetails)
			return
		}
		logger.Info("Backend request completed", fields...)

		writeSuccess(c, d, resp)
	}
}

func record(r Recorder, name string, status int, elapsed time.Duration) {
	if r != nil {
		r.ObserveBackend(name, status, elapsed)
	}
}

// readBody 按描述符校验并返回需转发的请求体
func readBody(c *gin.Context, d Descriptor) ([]byte, error) {
	switch d.Body {
	case BodyNone:
		return nil, nil

	case BodyIDs:
		var req model.BulkDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, BadRequest(i18n.T(i18n.InvalidIDs))
		}
		data, err := json.Marshal(req)
		if err != nil {
			return nil, errors.Wrap(err, "encode ids")
		}
		return data, nil

	case BodyJSON, BodyOptionalJSON:
		raw, err := c.GetRawData()
		if err != nil {
			return nil, BadRequest(i18n.T(i18n.InvalidBody))
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			if d.Body == BodyOptionalJSON {
				return nil, nil
			}
			return nil, BadRequest(i18n.T(i18n.InvalidBody))
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, BadRequest(i18n.T(i18n.InvalidBody))
		}
		for _, name := range d.Required {
			if missing(fields[name]) {
				return nil, BadRequest(i18n.T(i18n.FieldRequired, name))
			}
		}
		return raw, nil
	}
	return nil, nil
}

func missing(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// renderPath 用路由参数替换路径模板
func renderPath(c *gin.Context, d Descriptor) (string, error) {
	path := d.Path
	for _, name := range d.PathParams() {
		value := strings.TrimSpace(c.Param(name))
		// 点段会被后端规范化为上级路径
		if value == "" || value == "." || value == ".." {
			return "", BadRequest(i18n.T(i18n.InvalidPathParam, name))
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	return path, nil
}

// buildQuery 按白名单顺序拼接查询串，未提供的参数使用默认值
func buildQuery(c *gin.Context, params []QueryParam) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		value := c.Query(p.Name)
		if value == "" {
			value = p.Default
		}
		if value == "" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(p.Name)+"="+url.QueryEscape(value))
	}
	return strings.Join(pairs, "&")
}

// writeSuccess 写入成功响应
func writeSuccess(c *gin.Context, d Descriptor, resp *client.Response) {
	if resp.Status == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		c.Status(resp.Status)
		c.Writer.WriteHeaderNow()
		return
	}

	if d.Envelope == EnvelopeRaw {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(resp.Status, contentType, resp.Body)
		return
	}

	c.JSON(resp.Status, wrap(d, resp.Body))
}
