// Package metrics 提供基于Prometheus的指标收集
//
// 指标分四组：
//   - HTTP：请求数、耗时、并发数（由middleware.Metrics记录）
//   - 库存账本：每个操作的结果计数和耗时（inventory.Ledger记录）
//   - 缓存与熔断：数量缓存命中率、熔断器状态
//   - 消息队列：库存事件发布/消费计数
//
// 命名规范：
//   - Counter以_total结尾
//   - Histogram以单位结尾（_seconds）
//   - 标签只用有限取值（op、result、status），不要用store_id/book_id做标签
//
// 使用示例：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	rec, err := ledger.RemoveStock(ctx, storeID, bookID, 2)
//	metrics.ObserveLedgerOp("remove", "ok", time.Since(start))
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，不是实际URL）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 库存账本指标

	// LedgerOpsTotal 库存操作总数
	// 标签：op（add/remove/get）、result（ok/insufficient/not_found/invalid/error）
	LedgerOpsTotal *prometheus.CounterVec

	// LedgerOpDuration 库存操作耗时
	LedgerOpDuration *prometheus.HistogramVec

	// 缓存指标

	// CacheRequestsTotal 数量缓存请求
	// 标签：result（hit/miss/error）
	CacheRequestsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	// 标签：queue、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 注册所有指标到默认Registry
// 可重复调用，只有第一次生效（promauto重复注册会panic）
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	LedgerOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_ledger_ops_total",
			Help: "库存账本操作总数",
		},
		[]string{"op", "result"},
	)

	LedgerOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "inventory_ledger_op_duration_seconds",
			Help: "库存账本操作耗时（秒）",
			// 写操作包含行锁等待，桶比HTTP更细
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"op"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_quantity_cache_requests_total",
			Help: "库存数量缓存请求总数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// ObserveLedgerOp 记录一次库存操作
// result由调用方根据错误类型归类，这里不依赖领域包
func ObserveLedgerOp(op, result string, elapsed time.Duration) {
	if LedgerOpsTotal == nil {
		return
	}
	LedgerOpsTotal.WithLabelValues(op, result).Inc()
	LedgerOpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveCache 记录缓存命中情况
func ObserveCache(result string) {
	if CacheRequestsTotal == nil {
		return
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state int) {
	if CircuitBreakerState == nil {
		return
	}
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// IncBreakerRequest 记录熔断器请求结果
func IncBreakerRequest(name, result string) {
	if CircuitBreakerRequests == nil {
		return
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// IncPublished 记录消息发布
func IncPublished(exchange, routingKey, result string) {
	if MessagesPublishedTotal == nil {
		return
	}
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}

// ObserveConsumed 记录消息消费
func ObserveConsumed(queue, result string, elapsed time.Duration) {
	if MessagesConsumedTotal == nil {
		return
	}
	MessagesConsumedTotal.WithLabelValues(queue, result).Inc()
	MessageProcessingDuration.Observe(elapsed.Seconds())
}
