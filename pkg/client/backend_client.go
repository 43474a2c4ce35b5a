package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vera-byte/vgo-booking/pkg/model"
)

// ErrNotConfigured 后端基础地址未配置
var ErrNotConfigured = errors.New("backend base url is not configured")

// BackendClient 后端REST服务客户端接口
type BackendClient interface {
	// BaseURL 返回已解析的后端基础地址，未配置时为空
	BaseURL() string

	// Do 发送一次请求，不重试
	// 参数: ctx 上下文, req 请求描述
	// 返回值: *Response 后端响应（任意状态码）, error 网络层错误
	Do(ctx context.Context, req Request) (*Response, error)

	// Login 用户登录
	// 参数: ctx 上下文, username 用户名, password 密码
	// 返回值: *model.LoginResponse 登录响应, error 错误信息（后端非2xx时为 *StatusError）
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
}

// Request 后端请求描述
type Request struct {
	Method    string
	Path      string
	RawQuery  string // 已编码的查询串，按白名单顺序拼接
	Body      []byte
	Token     string
	RequestID string
}

// Response 后端响应
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Success 是否为2xx响应
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

// ConnectionError 网络层错误（DNS、超时、连接拒绝、读取响应失败）
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("backend connection failed: %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusError 后端返回非2xx状态
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.Status)
}

// BackendConfig 后端客户端配置
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// backendClient 后端客户端实现
type backendClient struct {
	http    *http.Client
	baseURL string
}

// NewBackendClient 创建新的后端客户端
// 参数: cfg 后端配置
// 返回值: BackendClient 客户端接口
func NewBackendClient(cfg BackendConfig) BackendClient {
	return &backendClient{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}
}

func (c *backendClient) BaseURL() string {
	return c.baseURL
}

// Do 发送请求
func (c *backendClient) Do(ctx context.Context, req Request) (*Response, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "build backend request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: target, Err: errors.Wrap(err, "read response body")}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

// Login 调用后端 auth/login
func (c *backendClient) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	payload, err := json.Marshal(model.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "encode login request")
	}

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, &StatusError{Status: resp.Status, Body: resp.Body}
	}

	var out model.LoginResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}
	// 部分后端版本将结果包在 data 字段中
	if out.BearerToken() == "" {
		var wrapped struct {
			Data model.LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(resp.Body, &wrapped); err == nil {
			out = wrapped.Data
		}
	}
	return &out, nil
}
