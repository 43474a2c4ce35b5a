package module

import (
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/internal/proxy"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"go.uber.org/zap"
)

// ModuleInfo 模块信息
type ModuleInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Healthy     bool   `json:"healthy"`
	Error       string `json:"error,omitempty"`
}

// Deps 模块共享依赖，启动时构建一次
type Deps struct {
	Config   *config.Config
	Client   client.BackendClient
	Sessions session.Store
	Recorder proxy.Recorder
	Logger   *zap.Logger
}

// Proxy 转换为代理处理器依赖
func (d Deps) Proxy() proxy.Deps {
	return proxy.Deps{
		Client:        d.Client,
		Logger:        d.Logger,
		Recorder:      d.Recorder,
		ExposeDetails: d.Config != nil && d.Config.IsDevelopment(),
	}
}
