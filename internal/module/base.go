package module

import (
	"context"
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Module 模块接口
// 所有模块都必须实现此接口
type Module interface {
	// Name 模块名称，同时作为路由前缀
	Name() string

	// Version 获取模块版本
	Version() string

	// Description 获取模块描述
	Description() string

	// Initialize 初始化模块
	// 参数: ctx 上下文, deps 共享依赖
	// 返回值: error 错误信息
	Initialize(ctx context.Context, deps Deps) error

	// RegisterRoutes 注册模块路由
	// 参数: router 以模块名称为前缀的路由组
	// 返回值: error 错误信息
	RegisterRoutes(router *gin.RouterGroup) error

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error

	// Shutdown 关闭模块
	Shutdown(ctx context.Context) error
}

// ModuleFactory 模块工厂接口
type ModuleFactory interface {
	// CreateModule 创建模块实例
	CreateModule() (Module, error)

	// ModuleType 获取模块类型
	ModuleType() string
}

// FactoryFunc 函数形式的模块工厂
type FactoryFunc struct {
	Type string
	New  func() (Module, error)
}

// CreateModule 创建模块实例
func (f FactoryFunc) CreateModule() (Module, error) { return f.New() }

// ModuleType 获取模块类型
func (f FactoryFunc) ModuleType() string { return f.Type }

// ModuleRegistry 模块注册表
// 用于注册和管理模块工厂
type ModuleRegistry struct {
	factories map[string]ModuleFactory
	logger    *zap.Logger
}

// NewModuleRegistry 创建新的模块注册表
// 参数: logger 日志器
// 返回值: *ModuleRegistry 注册表实例
func NewModuleRegistry(logger *zap.Logger) *ModuleRegistry {
	return &ModuleRegistry{
		factories: make(map[string]ModuleFactory),
		logger:    logger,
	}
}

// RegisterFactory 注册模块工厂
// 参数: factory 模块工厂
// 返回值: error 错误信息
func (r *ModuleRegistry) RegisterFactory(factory ModuleFactory) error {
	moduleType := factory.ModuleType()
	if _, exists := r.factories[moduleType]; exists {
		return fmt.Errorf("module factory %s already registered", moduleType)
	}

	r.factories[moduleType] = factory
	r.logger.Debug("Module factory registered", zap.String("type", moduleType))
	return nil
}

// CreateModule 创建模块实例
// 参数: moduleType 模块类型
// 返回值: Module 模块实例, error 错误信息
func (r *ModuleRegistry) CreateModule(moduleType string) (Module, error) {
	factory, exists := r.factories[moduleType]
	if !exists {
		return nil, fmt.Errorf("module factory %s not found", moduleType)
	}

	return factory.CreateModule()
}

// ListFactories 列出所有注册的工厂，按名称排序
func (r *ModuleRegistry) ListFactories() []string {
	types := make([]string, 0, len(r.factories))
	for moduleType := range r.factories {
		types = append(types, moduleType)
	}
	sort.Strings(types)
	return types
}
