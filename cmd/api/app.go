package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	grpcserver "github.com/xiebiao/bookledger/internal/interface/grpc"
)

// App HTTP服务 + gRPC健康检查
type App struct {
	cfg        *config.Config
	engine     *gin.Engine
	grpcServer *grpcserver.Server
}

// NewApp 组装应用
func NewApp(cfg *config.Config, engine *gin.Engine, grpcServer *grpcserver.Server) *App {
	return &App{cfg: cfg, engine: engine, grpcServer: grpcServer}
}

// Run 启动两个服务并阻塞到ctx取消
//
// 优雅关闭步骤：
// 1. 健康检查先切到NOT_SERVING，负载均衡摘除流量
// 2. HTTP停止接收新连接，等待进行中的请求（最多ShutdownTimeout）
// 3. 停止gRPC
func (a *App) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("监听gRPC端口失败: %w", err)
	}
	httpLis, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("监听HTTP端口失败: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.grpcServer.Serve(grpcLis)
	})

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Str("mode", a.cfg.Server.Mode).Msg("HTTP服务启动")
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	})

	// 两个端口都已监听，可以接流量
	a.grpcServer.SetServing()

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("正在关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		a.grpcServer.Shutdown(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP服务关闭超时: %w", err)
		}
		return nil
	})

	return g.Wait()
}
