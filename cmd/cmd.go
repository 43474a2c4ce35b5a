package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vera-byte/vgo-booking/internal/config"
	"github.com/vera-byte/vgo-booking/internal/logger"
	"go.uber.org/zap"
)

var configFile string

// RootCmd 根命令
var RootCmd = &cobra.Command{
	Use:   "vgo-booking",
	Short: "VGO Booking Gateway",
	Long: `VGO Booking Gateway is a session-gated API gateway in front of the
seat-booking REST backend. Every business endpoint is a proxy: it checks the
session and role, attaches the backend bearer token and normalizes errors.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config/config.yaml)")

	RootCmd.AddCommand(serverCmd)
	RootCmd.AddCommand(routesCmd)
	RootCmd.AddCommand(configCmd)
}

// bootstrap 加载 .env 与配置文件，并按配置创建日志器
// 返回值: *config.Config 配置, *zap.Logger 日志器, error 错误信息
func bootstrap() (*config.Config, *zap.Logger, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log, zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
