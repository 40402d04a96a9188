// Command stock-alerts 消费库存事件，库存低于阈值时告警
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/internal/infrastructure/logger"
	"github.com/xiebiao/bookledger/internal/interface/consumer"
	"github.com/xiebiao/bookledger/pkg/metrics"
	"github.com/xiebiao/bookledger/pkg/mq"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("低库存告警消费者退出")
		os.Exit(1)
	}
}

// run 所有defer在这里执行完，main再决定退出码
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	l, closer, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer closer.Close()
	logger.Install(l)
	metrics.InitMetrics()

	c, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.AlertQueue, consumer.RoutingKeys)
	if err != nil {
		return fmt.Errorf("创建消费者失败: %w", err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = l.WithContext(ctx)

	h := consumer.NewLowStockHandler(cfg.MQ.LowStockThreshold, nil)
	log.Info().Int("threshold", cfg.MQ.LowStockThreshold).Str("queue", cfg.MQ.AlertQueue).Msg("低库存告警消费者启动")

	if err := c.Consume(ctx, h.Handle); err != nil {
		return fmt.Errorf("消费中断: %w", err)
	}
	return nil
}
