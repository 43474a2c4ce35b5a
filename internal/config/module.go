package config

import "strings"

// ModuleConfig 单个模块的配置
type ModuleConfig struct {
	// Enabled 是否启用，未配置时视为启用
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Module 读取指定模块的配置
// 参数: name 模块名称
// 返回值: ModuleConfig 模块配置
func (c *Config) Module(name string) ModuleConfig {
	result := ModuleConfig{Enabled: true}

	raw, ok := c.Modules[strings.ToLower(name)]
	if !ok {
		return result
	}
	values, ok := raw.(map[string]interface{})
	if !ok {
		return result
	}

	if enabled, ok := values["enabled"].(bool); ok {
		result.Enabled = enabled
	}
	return result
}

// EnabledModules 过滤出启用的模块名称，保持输入顺序
// 参数: names 候选模块名称
func (c *Config) EnabledModules(names []string) []string {
	enabled := make([]string, 0, len(names))
	for _, name := range names {
		if c.Module(name).Enabled {
			enabled = append(enabled, name)
		}
	}
	return enabled
}
