package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vera-byte/vgo-booking/internal/i18n"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// Kind 错误分类
type Kind string

const (
	KindUnauthenticated Kind = "Unauthenticated"
	KindForbidden       Kind = "Forbidden"
	KindMisconfigured   Kind = "Misconfigured"
	KindBadRequest      Kind = "BadRequest"
	KindUpstream        Kind = "UpstreamError"
	KindConnection      Kind = "ConnectionError"
	KindInternal        Kind = "Internal"
)

// Error 代理层错误，在处理器边界统一转换为JSON响应
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details interface{} // 后端原始错误体，仅开发环境输出
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated 缺少会话或访问令牌
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Status: http.StatusUnauthorized, Message: i18n.T(i18n.TokenMissing)}
}

// Forbidden 角色不满足要求
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: i18n.T(i18n.Forbidden)}
}

// ForbiddenWith 携带自定义文案的403
func ForbiddenWith(message string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: message}
}

// Misconfigured 后端地址未配置
func Misconfigured() *Error {
	return &Error{Kind: KindMisconfigured, Status: http.StatusInternalServerError, Message: i18n.T(i18n.BackendMissing)}
}

// BadRequest 请求参数缺失或非法
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: message}
}

// Connection 与后端通信失败
func Connection(err error) *Error {
	return &Error{Kind: KindConnection, Status: http.StatusInternalServerError, Message: i18n.T(i18n.ConnectionFailed), Err: err}
}

// Internal 网关自身依赖（如会话存储）故障
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: i18n.T(i18n.Internal), Err: err}
}

// Upstream 根据后端非2xx响应构造错误
// 文案依次取 message、error 字段，均缺失时使用 fallback
func Upstream(status int, body []byte, fallback string) *Error {
	message := ExtractMessage(body)
	if message == "" {
		message = fallback
	}
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Kind:    KindUpstream,
		Status:  status,
		Message: message,
		Details: rawDetails(body),
	}
}

// ExtractMessage 从后端错误体中提取文案
// 非JSON或非对象的错误体视为空对象
func ExtractMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]interface{}{}
	}
	for _, key := range []string{"message", "error"} {
		if text, ok := payload[key].(string); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

func rawDetails(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}
	return string(body)
}

// Classify 将任意错误归类为代理错误
func Classify(err error) *Error {
	var proxyErr *Error
	if errors.As(err, &proxyErr) {
		return proxyErr
	}
	if errors.Is(err, client.ErrNotConfigured) {
		return Misconfigured()
	}
	// 网络错误与响应解析失败统一视为连接错误
	return Connection(err)
}

// Abort 写入统一错误响应并中止处理链
// 参数: c gin上下文, err 错误, exposeDetails 是否输出后端原始错误体
func Abort(c *gin.Context, err error, exposeDetails bool) {
	e := Classify(err)
	resp := model.ErrorResponse{Error: e.Message, Status: e.Status}
	if exposeDetails {
		resp.Details = e.Details
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status, resp)
}
