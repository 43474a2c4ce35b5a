package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vera-byte/vgo-booking/internal/health"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serverCmd 服务器启动命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gateway server",
	Long:  `Start the HTTP gateway and, when server.grpc_port is set, the gRPC health service.`,
	RunE:  runServer,
}

// runServer 启动服务器，收到 SIGINT/SIGTERM 后优雅关闭
func runServer(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting VGO Booking Gateway",
		zap.String("backend", cfg.BackendURL()),
		zap.String("session_store", cfg.Session.Store))

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	printRouteTable(os.Stdout, a.router.Routes())

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Server.GRPCPort > 0 {
		hs := health.NewServer(a.manager, 15*time.Second, logger)
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort))
		g.Go(func() error {
			return hs.Serve(gctx, addr)
		})
	}

	runErr := g.Wait()

	// 关闭所有模块与会话存储
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down modules", zap.Error(err))
	}

	if runErr != nil {
		return fmt.Errorf("server stopped: %w", runErr)
	}
	logger.Info("Server exited")
	return nil
}
