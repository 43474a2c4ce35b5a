package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/internal/middleware"
	"github.com/vera-byte/vgo-booking/internal/module"
	"github.com/vera-byte/vgo-booking/internal/session"
	"github.com/vera-byte/vgo-booking/modules/auth"
	"github.com/vera-byte/vgo-booking/modules/resources"
	"github.com/vera-byte/vgo-booking/pkg/client"
	"go.uber.org/zap"
)

// app 组装完成的网关
type app struct {
	router  *gin.Engine
	manager *module.Manager
	store   session.Store
}

// factories 内置模块工厂，顺序即初始化顺序
func factories() []module.ModuleFactory {
	return append([]module.ModuleFactory{auth.Factory()}, resources.Factories()...)
}

// newApp 按配置构建会话存储、后端客户端、模块与路由
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	gin.SetMode(cfg.Server.Mode)

	store, err := session.NewStore(cfg.Session, cfg.SessionTTL())
	if err != nil {
		return nil, err
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			if closer, ok := store.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
			return nil, errors.Wrap(err, "connect session store")
		}
	}

	backend := client.NewBackendClient(client.BackendConfig{
		BaseURL: cfg.BackendURL(),
		Timeout: cfg.Backend.TimeoutDuration(),
	})
	if backend.BaseURL() == "" {
		logger.Warn("Backend URL is not configured, proxied requests will fail with 500")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		return nil, errors.Wrap(err, "register metrics")
	}

	// 创建模块
	moduleRegistry := module.NewModuleRegistry(logger)
	var names []string
	for _, f := range factories() {
		if err := moduleRegistry.RegisterFactory(f); err != nil {
			return nil, err
		}
		names = append(names, f.ModuleType())
	}

	manager := module.NewManager(logger)
	for _, name := range cfg.EnabledModules(names) {
		m, err := moduleRegistry.CreateModule(name)
		if err != nil {
			return nil, err
		}
		if err := manager.RegisterModule(m); err != nil {
			return nil, err
		}
	}

	if err := manager.InitializeAll(ctx, module.Deps{
		Config:   cfg,
		Client:   backend,
		Sessions: store,
		Recorder: metrics,
		Logger:   logger,
	}); err != nil {
		return nil, err
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, errors.Wrap(err, "set trusted proxies")
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(metrics.Handler())
	router.Use(middleware.LoadSession(store, cfg.Session.CookieName, logger))

	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Type:      cfg.RateLimit.Type,
			Limit:     cfg.RateLimit.Rate,
			Window:    time.Duration(cfg.RateLimit.Expiration) * time.Second,
			Prefix:    "ratelimit",
			RedisAddr: cfg.RateLimit.RedisAddr,
			RedisDB:   cfg.RateLimit.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		router.Use(middleware.RateLimit(limiter, middleware.SessionKey, logger))
		logger.Info("Rate limiter enabled",
			zap.String("type", cfg.RateLimit.Type),
			zap.Int("rate", cfg.RateLimit.Rate))
	}

	router.GET("/health", healthHandler(manager))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	if cfg.IsDevelopment() {
		pprof.Register(router)
	}

	if err := manager.RegisterRoutes(router.Group("/api")); err != nil {
		return nil, err
	}

	return &app{router: router, manager: manager, store: store}, nil
}

// shutdown 关闭所有模块后释放会话存储
// 存储由 app 持有，即使 auth 模块被禁用也会关闭
func (a *app) shutdown(ctx context.Context) error {
	err := a.manager.ShutdownAll(ctx)
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close session store")
		}
	}
	return err
}

// healthHandler 汇总模块健康状态，任一模块异常时返回 503
func healthHandler(manager *module.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		modules := manager.ListModules(c.Request.Context())
		status, code := "healthy", http.StatusOK
		for _, m := range modules {
			if !m.Healthy {
				status, code = "unhealthy", http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": status, "modules": modules})
	}
}
