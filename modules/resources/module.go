package resources

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/vera-byte/vgo-booking/internal/middleware"
	"github.com/vera-byte/vgo-booking/internal/module"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"go.uber.org/zap"
)

// Module 代理资源模块，一个后端资源对应一个模块
// 路由由描述符表生成，模块本身不含业务逻辑
type Module struct {
	name        string
	description string
	descriptors []proxy.Descriptor
	deps        proxy.Deps
	logger      *zap.Logger
	initialized bool
}

// NewModule 创建资源模块
// 参数: name 资源名称（路由前缀）, description 描述, descriptors 端点描述表
func NewModule(name, description string, descriptors []proxy.Descriptor) *Module {
	return &Module{
		name:        name,
		description: description,
		descriptors: descriptors,
	}
}

// Name 获取模块名称
func (m *Module) Name() string {
	return m.name
}

// Version 获取模块版本
func (m *Module) Version() string {
	return "1.0.0"
}

// Description 获取模块描述
func (m *Module) Description() string {
	return m.description
}

// Descriptors 返回端点描述表
func (m *Module) Descriptors() []proxy.Descriptor {
	return m.descriptors
}

// Initialize 初始化模块
func (m *Module) Initialize(ctx context.Context, deps module.Deps) error {
	for _, d := range m.descriptors {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	m.deps = deps.Proxy()
	m.logger = deps.Logger
	m.initialized = true

	if m.deps.Client == nil || m.deps.Client.BaseURL() == "" {
		// 不阻止启动：每个请求单独返回 500
		m.logger.Warn("Backend URL not configured", zap.String("resource", m.name))
	}
	return nil
}

// RegisterRoutes 注册模块路由
func (m *Module) RegisterRoutes(router *gin.RouterGroup) error {
	if !m.initialized {
		return fmt.Errorf("resource module %s not initialized", m.name)
	}
	// 整个资源仅限特定角色时在路由组上统一校验
	if roles := sharedRoles(m.descriptors); len(roles) > 0 {
		router.Use(middleware.RequireRole(m.deps.ExposeDetails, roles...))
	}
	return proxy.Register(router, m.descriptors, m.deps)
}

// sharedRoles 所有端点要求相同角色集合时返回该集合，否则返回 nil
func sharedRoles(descriptors []proxy.Descriptor) []model.Role {
	if len(descriptors) == 0 || !descriptors[0].RequiresRole() {
		return nil
	}
	first := descriptors[0].Roles
	for _, d := range descriptors[1:] {
		if len(d.Roles) != len(first) {
			return nil
		}
		for _, role := range first {
			if !d.Allows(role) {
				return nil
			}
		}
	}
	return first
}

// HealthCheck 健康检查
func (m *Module) HealthCheck(ctx context.Context) error {
	if !m.initialized {
		return fmt.Errorf("resource module %s not initialized", m.name)
	}
	if m.deps.Client == nil || m.deps.Client.BaseURL() == "" {
		return fmt.Errorf("backend URL not configured")
	}
	return nil
}

// Shutdown 关闭模块
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}

// Factories 返回全部资源模块的工厂，顺序即路由注册顺序
func Factories() []module.ModuleFactory {
	tables := All()
	factories := make([]module.ModuleFactory, 0, len(tables))
	for _, t := range tables {
		t := t
		factories = append(factories, module.FactoryFunc{
			Type: t.Name,
			New: func() (module.Module, error) {
				return NewModule(t.Name, t.Description, t.Descriptors), nil
			},
		})
	}
	return factories
}
