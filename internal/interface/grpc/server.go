// Package grpc 运维用gRPC服务：标准健康检查和反射
//
// 业务接口只走HTTP;gRPC端口给负载均衡和k8s探针用，
// 用grpcurl或grpc_health_probe都能直接访问
package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 健康检查中注册的服务名
const ServiceName = "bookledger.Inventory"

// Server gRPC健康检查服务器
type Server struct {
	server *grpc.Server
	health *health.Server
}

// NewServer 创建服务器，初始状态为NOT_SERVING
// HTTP服务就绪后调用SetServing
func NewServer() *Server {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(4*1024*1024),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// 开发环境用grpcurl调试
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{server: s, health: hs}
}

// SetServing 切换为SERVING
func (s *Server) SetServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Serve 在listener上阻塞服务，Stop后返回nil
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("gRPC健康检查服务启动")
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC服务异常退出: %w", err)
	}
	return nil
}

// Shutdown 先把状态置为NOT_SERVING再优雅停止
// ctx超时后强制停止
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}
