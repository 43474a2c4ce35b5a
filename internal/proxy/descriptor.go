package proxy

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/vera-byte/vgo-booking/pkg/model"
)

// BodyMode 请求体处理方式
type BodyMode int

const (
	// BodyNone 不转发请求体
	BodyNone BodyMode = iota
	// BodyJSON 必须为JSON对象，原样转发
	BodyJSON
	// BodyOptionalJSON 可为空；非空时必须为JSON对象
	BodyOptionalJSON
	// BodyIDs 批量删除：{"ids": [数字, ...]}，至少一个
	BodyIDs
)

// EnvelopeMode 成功响应的包装方式
type EnvelopeMode int

const (
	// EnvelopeRaw 原样转发后端响应体
	EnvelopeRaw EnvelopeMode = iota
	// EnvelopeWrap 包装为 {success, data, message[, pagination]}
	EnvelopeWrap
)

// QueryParam 查询参数白名单项
type QueryParam struct {
	Name    string
	Default string
}

// Page 与 Limit 生成列表资源的分页参数
func Page() QueryParam { return QueryParam{Name: "page", Default: "1"} }

// Limit 每页条数，默认值因资源而异
func Limit(def string) QueryParam { return QueryParam{Name: "limit", Default: def} }

// Param 无默认值的查询参数
func Param(name string) QueryParam { return QueryParam{Name: name} }

// Descriptor 描述一个 (资源, 动作) 代理端点
type Descriptor struct {
	// Name 端点名称，用于日志与指标，如 chairs.update
	Name string
	// Method 客户端请求方法
	Method string
	// Route gin相对路由，如 "" 或 "/:id/confirm"
	Route string
	// UpstreamMethod 后端请求方法，为空时与 Method 相同
	UpstreamMethod string
	// Path 后端路径模板，{name} 由同名路由参数替换
	Path string
	// Roles 允许的角色，为空表示任意已登录用户
	Roles []model.Role
	// Query 查询参数白名单，按顺序转发
	Query []QueryParam
	Body  BodyMode
	// Required 请求体必填字段
	Required []string
	Envelope EnvelopeMode
	// SuccessMessage 包装模式下的默认成功文案
	SuccessMessage string
	// FallbackError 后端错误体缺少文案时使用
	FallbackError string
	// List 列表资源，包装时补齐分页信息
	List bool
}

var pathParamPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// upstreamMethod 返回后端请求方法
func (d Descriptor) upstreamMethod() string {
	if d.UpstreamMethod != "" {
		return d.UpstreamMethod
	}
	return d.Method
}

// PathParams 返回路径模板中的参数名
func (d Descriptor) PathParams() []string {
	matches := pathParamPattern.FindAllStringSubmatch(d.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// RequiresRole 是否为角色受限端点
func (d Descriptor) RequiresRole() bool {
	return len(d.Roles) > 0
}

// Allows 判断角色是否满足要求
func (d Descriptor) Allows(role model.Role) bool {
	if !d.RequiresRole() {
		return true
	}
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Validate 注册前校验描述符
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor without name")
	}
	if d.Method == "" || d.Path == "" {
		return fmt.Errorf("descriptor %s: method and path are required", d.Name)
	}
	if strings.TrimSpace(d.FallbackError) == "" {
		return fmt.Errorf("descriptor %s: fallback error message is required", d.Name)
	}
	for _, role := range d.Roles {
		if !role.Valid() {
			return fmt.Errorf("descriptor %s: unknown role %q", d.Name, role)
		}
	}
	if d.List {
		for _, name := range []string{"page", "limit"} {
			if def, ok := d.queryDefault(name); !ok || def == "" {
				return fmt.Errorf("descriptor %s: list resources need a default %s", d.Name, name)
			}
		}
	}
	if d.Body != BodyNone && (d.Method == http.MethodGet || d.Method == http.MethodHead) {
		return fmt.Errorf("descriptor %s: %s cannot carry a body", d.Name, d.Method)
	}
	if len(d.Required) > 0 && d.Body != BodyJSON {
		return fmt.Errorf("descriptor %s: required fields need a JSON body", d.Name)
	}
	for _, name := range d.PathParams() {
		if !strings.Contains(d.Route, ":"+name) {
			return fmt.Errorf("descriptor %s: path parameter %s missing from route %q", d.Name, name, d.Route)
		}
	}
	return nil
}

func (d Descriptor) queryDefault(name string) (string, bool) {
	for _, q := range d.Query {
		if q.Name == name {
			return q.Default, true
		}
	}
	return "", false
}
