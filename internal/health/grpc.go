package health

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Checker 模块健康状态来源，由 module.Manager 实现
type Checker interface {
	HealthCheck(ctx context.Context) map[string]error
}

// Server gRPC健康检查服务
// 服务名 "" 表示网关整体状态，其余服务名与模块名称一致
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	checker  Checker
	interval time.Duration
	logger   *zap.Logger
}

// NewServer 创建健康检查服务
// 参数: checker 健康状态来源, interval 刷新间隔, logger 日志器
func NewServer(checker Checker, interval time.Duration, logger *zap.Logger) *Server {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpc:     gs,
		health:   hs,
		checker:  checker,
		interval: interval,
		logger:   logger,
	}
}

// Refresh 根据模块健康状态更新服务状态
func (s *Server) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, err := range s.checker.HealthCheck(ctx) {
		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Debug("Module unhealthy", zap.String("module", name), zap.Error(err))
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus("", overall)
}

// Serve 监听并提供服务，ctx 取消后优雅停止
// 参数: ctx 生命周期上下文, addr 监听地址
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen grpc health on %s", addr)
	}

	s.Refresh(ctx)
	go s.refreshLoop(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.logger.Info("Starting gRPC health server", zap.String("addr", addr))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return errors.Wrap(err, "serve grpc health")
	}
	return nil
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
