package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ParentChild(t *testing.T) {
	recorder := installRecorder(t)

	ctx, parent := StartSpan(context.Background(), "test", "http.request")
	_, child := StartSpan(ctx, "test", "inventory.add_stock")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "inventory.add_stock", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
}

func TestEndSpan_RecordsStatus(t *testing.T) {
	recorder := installRecorder(t)

	_, ok := StartSpan(context.Background(), "test", "inventory.get_quantity")
	ok.SetAttributes(attribute.Int("store_id", 1))
	EndSpan(ok, nil)

	_, failed := StartSpan(context.Background(), "test", "inventory.remove_stock")
	EndSpan(failed, errors.New("库存不足"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "库存不足", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1, "错误应作为事件记录")
}

func TestExtractIDs(t *testing.T) {
	installRecorder(t)

	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))

	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
	assert.Len(t, ExtractSpanID(ctx), 16)
	assert.Equal(t, span.SpanContext().TraceID().String(), ExtractTraceID(ctx))
}
