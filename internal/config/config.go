package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config 应用配置结构
type Config struct {
	App       AppConfig              `mapstructure:"app" json:"app"`
	Server    ServerConfig           `mapstructure:"server" json:"server"`
	Backend   BackendConfig          `mapstructure:"backend" json:"backend"`
	Session   SessionConfig          `mapstructure:"session" json:"session"`
	Log       LogConfig              `mapstructure:"log" json:"log"`
	RateLimit RateLimitConfig        `mapstructure:"ratelimit" json:"ratelimit"`
	CORS      CORSConfig             `mapstructure:"cors" json:"cors"`
	Modules   map[string]interface{} `mapstructure:"modules" json:"modules"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `mapstructure:"name" json:"name"`
	Env  string `mapstructure:"env" json:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port     string `mapstructure:"port" json:"port"`
	Mode     string `mapstructure:"mode" json:"mode"`
	Host     string `mapstructure:"host" json:"host"`
	GRPCPort int    `mapstructure:"grpc_port" json:"grpc_port"` // 0 表示不启动gRPC健康检查

	// TrustedProxies 允许设置 X-Forwarded-For 的代理地址或网段，为空时只信任直连地址
	TrustedProxies []string `mapstructure:"trusted_proxies" json:"trusted_proxies"`
}

// BackendConfig 后端REST服务配置
// PublicURL 与 PrivateURL 同时存在时以 PrivateURL 为准
type BackendConfig struct {
	PublicURL  string `mapstructure:"public_url" json:"public_url"`
	PrivateURL string `mapstructure:"private_url" json:"private_url"`
	Timeout    int    `mapstructure:"timeout" json:"timeout"` // 秒，0 表示使用默认传输超时
}

// SessionConfig 会话配置
type SessionConfig struct {
	Store      string `mapstructure:"store" json:"store"` // cookie, memory 或 redis
	Secret     string `mapstructure:"secret" json:"-"`
	CookieName string `mapstructure:"cookie_name" json:"cookie_name"`
	TTL        int    `mapstructure:"ttl" json:"ttl"` // 秒
	Secure     bool   `mapstructure:"secure" json:"secure"`
	RedisAddr  string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db" json:"redis_db"`
	RedisPass  string `mapstructure:"redis_pass" json:"-"`
	Prefix     string `mapstructure:"prefix" json:"prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	Format     string `mapstructure:"format" json:"format"`
	File       string `mapstructure:"file" json:"file"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age"` // 天
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	Type       string `mapstructure:"type" json:"type"` // redis 或 memory
	RedisAddr  string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db" json:"redis_db"`
	Rate       int    `mapstructure:"rate" json:"rate"`
	Expiration int    `mapstructure:"expiration" json:"expiration"` // 时间窗口（秒）
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Origins []string `mapstructure:"origins" json:"origins"`
}

// BackendURL 返回后端基础地址，PrivateURL 优先
// 两者均为空时返回空字符串，由调用方判定为配置缺失
func (c *Config) BackendURL() string {
	return c.Backend.BaseURL()
}

// BaseURL 按优先级解析后端基础地址
func (b BackendConfig) BaseURL() string {
	for _, candidate := range []string{b.PrivateURL, b.PublicURL} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return strings.TrimRight(trimmed, "/")
		}
	}
	return ""
}

// TimeoutDuration 后端请求超时时间
func (b BackendConfig) TimeoutDuration() time.Duration {
	if b.Timeout <= 0 {
		return 0
	}
	return time.Duration(b.Timeout) * time.Second
}

// IsDevelopment 是否为开发环境
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, EnvDevelopment)
}

// SessionTTL 会话有效期
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTL) * time.Second
}

// Load 加载配置文件
// 参数: file 指定的配置文件路径，为空时按默认路径查找
// 返回值: *Config 配置对象, error 错误信息
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// 读取环境变量，server.port 对应 SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("backend.public_url", "PUBLIC_API_URL")
	_ = v.BindEnv("backend.private_url", "BACKEND_API_URL")
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("session.secret", "SESSION_SECRET")

	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在，使用默认值
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vgo-booking")
	v.SetDefault("app.env", EnvProduction)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 0)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("backend.public_url", "")
	v.SetDefault("backend.private_url", "")
	v.SetDefault("backend.timeout", 0)
	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", 8*3600)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.redis_pass", "")
	v.SetDefault("session.prefix", "session")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.type", "memory")
	v.SetDefault("ratelimit.redis_addr", "localhost:6379")
	v.SetDefault("ratelimit.redis_db", 0)
	v.SetDefault("ratelimit.rate", 100)
	v.SetDefault("ratelimit.expiration", 60)
	v.SetDefault("cors.origins", []string{})
}

// validate 校验无法在运行时兜底的配置
// 后端地址缺失不在此报错：每个请求会单独返回 500
func (c *Config) validate() error {
	switch c.Session.Store {
	case "cookie":
		if strings.TrimSpace(c.Session.Secret) == "" {
			return errors.New("session.secret is required for the cookie session store")
		}
	case "memory", "redis":
	default:
		return errors.Errorf("unsupported session store: %s", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return errors.Errorf("unsupported app.env: %s", c.App.Env)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return errors.Errorf("unsupported server.mode: %s", c.Server.Mode)
	}
	return nil
}
