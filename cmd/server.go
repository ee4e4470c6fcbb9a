/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/api"
	"github.com/guyuan9300-max/fleethub/internal/config"
	"github.com/guyuan9300-max/fleethub/internal/container"
	"github.com/guyuan9300-max/fleethub/internal/logger"
	"github.com/guyuan9300-max/fleethub/internal/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the fleethub API server.
The server listens on the configured host and port, accepts telemetry over HTTP
(and Kafka when enabled), and streams domain events to /ws and /sse subscribers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		// 2. 日志
		log, err := logger.NewFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.SetDefault(log)

		if config.IsProduction(cfg) {
			gin.SetMode(gin.ReleaseMode)
		}

		// 3. 追踪
		if cfg.Tracing.Enabled {
			if err := api.InitTracing(context.Background(), cfg.Tracing); err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}

		// 4. 初始化容器
		ctr, err := container.NewContainer(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}

		// 5. 配置热加载,目前只应用日志级别
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath, log)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				level := logger.ParseLevel(newCfg.Log.Level)
				if level != log.GetLevel() {
					log.SetLevel(level)
					log.WithField("level", level.String()).Info("log level changed")
				}
			})
			if err := watcher.Start(); err != nil {
				log.WithError(err).Warn("config watcher disabled")
			}
			defer watcher.Stop()
		}

		// 6. 设置路由
		router := setupRouter(ctr, cfg)

		// 7. 后台任务
		workerCtx, cancelWorkers := context.WithCancel(context.Background())
		ctr.StartWorkers(workerCtx)

		// 8. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			log.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// 等待中断信号或监听失败
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			log.WithField("signal", sig.String()).Info("shutting down server")
		case err = <-serverErr:
			log.WithError(err).Error("server failed")
		}

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			log.WithError(shutdownErr).Error("server forced to shutdown")
		}

		cancelWorkers()
		if closeErr := ctr.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("failed to release resources")
		}
		if tracingErr := api.ShutdownTracing(ctx); tracingErr != nil {
			log.WithError(tracingErr).Warn("failed to flush traces")
		}

		log.Info("server exited")
		return err
	},
}

// setupRouter 创建控制器并注册路由
func setupRouter(ctr *container.Container, cfg *config.Config) *gin.Engine {
	ctrls := api.Controllers{
		Health: api.NewHealthController(ctr.DB(), ctr.RedisClient()),
		Ingest: api.NewIngestController(ctr.IngestService()),
		Fleet:  api.NewFleetController(ctr.StatisticsService(), ctr.AnomalyService()),
		Query:  api.NewQueryController(ctr.QueryService()),
	}

	return api.SetupRoutes(api.RouterConfig{
		Logger: ctr.Logger(),
		Hub:    ctr.Hub(),
		CORS:   cfg.CORS,
		Ingest: cfg.Ingest,
		WebSocket: websocket.ClientOptions{
			SendBuffer: cfg.WebSocket.SendBuffer,
			WriteWait:  cfg.WebSocket.WriteWait,
		},
		Production:  config.IsProduction(cfg),
		Tracing:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	}, ctrls)
}

// newLogger 供子命令在容器外使用
func newLogger(cfg *config.Config) *logrus.Logger {
	log, err := logger.NewFromConfig(&cfg.Log)
	if err != nil {
		return logger.Default()
	}
	return log
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
