// Command api 图书目录与门店库存服务
//
// @title                       Bookledger API
// @version                     1.0
// @description                 图书目录、书店和门店库存账本
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "github.com/xiebiao/bookledger/docs"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/internal/infrastructure/logger"
	"github.com/xiebiao/bookledger/pkg/metrics"
	"github.com/xiebiao/bookledger/pkg/tracing"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("加载配置失败")
		return 1
	}

	// 2. 日志
	l, closer, err := logger.New(cfg.Log)
	if err != nil {
		log.Error().Err(err).Msg("初始化日志失败")
		return 1
	}
	defer closer.Close()
	logger.Install(l)

	// 3. 指标和链路追踪
	metrics.InitMetrics()
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		log.Error().Err(err).Msg("初始化链路追踪失败")
		return 1
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	// 4. 依赖注入（wire_gen.go）
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		log.Error().Err(err).Msg("初始化应用失败")
		return 1
	}
	defer cleanup()

	// 5. 运行直到收到SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("服务异常退出")
		return 1
	}
	log.Info().Msg("服务已关闭")
	return 0
}
