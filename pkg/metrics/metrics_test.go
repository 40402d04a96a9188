package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	first := LedgerOpsTotal

	// 第二次调用不能重复注册（否则promauto会panic）
	assert.NotPanics(t, InitMetrics)
	assert.Same(t, first, LedgerOpsTotal)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, CacheRequestsTotal)
}

func TestObserveLedgerOp(t *testing.T) {
	InitMetrics()

	before := counterValue(t, LedgerOpsTotal.WithLabelValues("remove", "insufficient"))
	ObserveLedgerOp("remove", "insufficient", 3*time.Millisecond)
	ObserveLedgerOp("remove", "insufficient", 5*time.Millisecond)
	after := counterValue(t, LedgerOpsTotal.WithLabelValues("remove", "insufficient"))

	assert.Equal(t, float64(2), after-before)

	hist := histogramMetric(t, LedgerOpDuration.WithLabelValues("remove").(prometheus.Histogram))
	assert.GreaterOrEqual(t, hist.GetSampleCount(), uint64(2))
}

func TestObserveCache(t *testing.T) {
	InitMetrics()

	hits := cacheCounter(t, "hit")
	ObserveCache("hit")
	assert.Equal(t, float64(1), cacheCounter(t, "hit")-hits)
}

func TestBreakerAndMQHelpers(t *testing.T) {
	InitMetrics()

	SetBreakerState("quantity-cache", 1)
	m := &dto.Metric{}
	require.NoError(t, CircuitBreakerState.WithLabelValues("quantity-cache").Write(m))
	assert.Equal(t, float64(1), m.GetGauge().GetValue())

	before := counterValue(t, MessagesPublishedTotal.WithLabelValues("bookstore.inventory", "inventory.stock.added", "success"))
	IncPublished("bookstore.inventory", "inventory.stock.added", "success")
	after := counterValue(t, MessagesPublishedTotal.WithLabelValues("bookstore.inventory", "inventory.stock.added", "success"))
	assert.Equal(t, float64(1), after-before)
}

// cacheCounter 读取缓存计数
func cacheCounter(t *testing.T, result string) float64 {
	t.Helper()
	return counterValue(t, CacheRequestsTotal.WithLabelValues(result))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func histogramMetric(t *testing.T, h prometheus.Histogram) *dto.Histogram {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram()
}
