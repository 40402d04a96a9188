package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xiebiao/bookledger/pkg/tracing"
)

// RequestIDHeader 请求ID响应头
const RequestIDHeader = "X-Request-ID"

// RequestLogger 请求日志中间件
//
// 教学要点：
// 1. 每个请求生成唯一ID（客户端传了X-Request-ID则沿用），写入响应头
// 2. 带request_id的子Logger放进request context,
//    后续zerolog.Ctx(ctx)拿到的都是它，同一请求的日志可以串起来
// 3. 结束时记录方法、路由、状态码、耗时；慢请求升级为Warn
//
// 不记录请求体和Authorization头
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		logger := base.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		event := logger.Info()
		if latency > 3*time.Second {
			event = logger.Warn()
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			event = event.Str("trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP请求")
	}
}
