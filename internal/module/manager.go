package module

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Manager 模块管理器
// 按注册顺序初始化、注册路由，按相反顺序关闭
type Manager struct {
	modules map[string]Module
	order   []string
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewManager 创建新的模块管理器
// logger: 日志记录器
// 返回值: *Manager 管理器实例
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		modules: make(map[string]Module),
		logger:  logger,
	}
}

// RegisterModule 注册模块
// module: 模块实例，名称取自 module.Name()
// 返回值: error 错误信息
func (m *Manager) RegisterModule(module Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := module.Name()
	if _, exists := m.modules[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}

	m.modules[name] = module
	m.order = append(m.order, name)
	m.logger.Info("Module registered", zap.String("name", name))
	return nil
}

// InitializeAll 初始化所有模块
// ctx: 上下文
// deps: 共享依赖
// 返回值: error 错误信息
func (m *Manager) InitializeAll(ctx context.Context, deps Deps) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	base := deps.Logger
	if base == nil {
		base = m.logger
	}
	for _, name := range m.order {
		moduleDeps := deps
		moduleDeps.Logger = base.With(zap.String("module", name))
		if err := m.modules[name].Initialize(ctx, moduleDeps); err != nil {
			return fmt.Errorf("failed to initialize module %s: %w", name, err)
		}
		m.logger.Info("Module initialized", zap.String("name", name))
	}

	return nil
}

// RegisterRoutes 注册所有模块的路由，每个模块挂在 /<name> 下
// router: Gin路由组
// 返回值: error 错误信息
func (m *Manager) RegisterRoutes(router *gin.RouterGroup) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		moduleGroup := router.Group("/" + name)
		if err := m.modules[name].RegisterRoutes(moduleGroup); err != nil {
			return fmt.Errorf("failed to register routes for module %s: %w", name, err)
		}
		m.logger.Debug("Module routes registered", zap.String("name", name))
	}

	return nil
}

// GetModule 获取指定模块
// name: 模块名称
// 返回值: Module 模块实例, bool 是否存在
func (m *Manager) GetModule(name string) (Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	module, exists := m.modules[name]
	return module, exists
}

// ListModules 列出所有模块及其健康状态
// ctx: 上下文
// 返回值: []ModuleInfo 模块信息列表
func (m *Manager) ListModules(ctx context.Context) []ModuleInfo {
	health := m.HealthCheck(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	modules := make([]ModuleInfo, 0, len(m.order))
	for _, name := range m.order {
		module := m.modules[name]
		info := ModuleInfo{
			Name:        name,
			Version:     module.Version(),
			Description: module.Description(),
			Healthy:     health[name] == nil,
		}
		if err := health[name]; err != nil {
			info.Error = err.Error()
		}
		modules = append(modules, info)
	}

	return modules
}

// HealthCheck 检查所有模块的健康状态
// ctx: 上下文
// 返回值: map[string]error 模块健康状态
func (m *Manager) HealthCheck(ctx context.Context) map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := make(map[string]error, len(m.modules))
	for name, module := range m.modules {
		health[name] = module.HealthCheck(ctx)
	}

	return health
}

// Healthy 所有模块是否健康
func (m *Manager) Healthy(ctx context.Context) bool {
	for _, err := range m.HealthCheck(ctx) {
		if err != nil {
			return false
		}
	}
	return true
}

// ShutdownAll 关闭所有模块
// ctx: 上下文
// 返回值: error 错误信息
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errors []string
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		if err := m.modules[name].Shutdown(ctx); err != nil {
			errors = append(errors, fmt.Sprintf("module %s: %v", name, err))
			m.logger.Error("Failed to shutdown module", zap.String("name", name), zap.Error(err))
		} else {
			m.logger.Info("Module shutdown", zap.String("name", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("shutdown errors: %s", strings.Join(errors, "; "))
	}

	return nil
}
