// Package consumer 库存事件的消费端
package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/pkg/mq"
)

// RoutingKeys 低库存告警关心的事件
var RoutingKeys = []string{
	inventory.EventStockRemoved.RoutingKey(),
	inventory.EventStockDepleted.RoutingKey(),
}

// Alert 一次低库存告警
type Alert struct {
	StoreID   uint
	BookID    uint
	Quantity  int
	Threshold int
	Depleted  bool
}

// Notifier 告警出口，默认只写日志
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier 把告警写成Warn日志
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, a Alert) error {
	event := zerolog.Ctx(ctx).Warn().
		Uint("store_id", a.StoreID).
		Uint("book_id", a.BookID).
		Int("quantity", a.Quantity).
		Int("threshold", a.Threshold)
	if a.Depleted {
		event.Msg("库存已取空")
		return nil
	}
	event.Msg("库存低于告警阈值")
	return nil
}

// LowStockHandler 根据取出事件判断是否低库存
//
// 学习要点：
//   - 格式错误的消息返回mq.ErrDrop，重试也不会成功，直接丢弃
//   - Notifier失败返回普通错误，消息重新入队
type LowStockHandler struct {
	threshold int
	notifier  Notifier
}

// NewLowStockHandler notifier为nil时使用LogNotifier
func NewLowStockHandler(threshold int, notifier Notifier) *LowStockHandler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &LowStockHandler{threshold: threshold, notifier: notifier}
}

// Handle 符合mq.Handler签名
func (h *LowStockHandler) Handle(ctx context.Context, routingKey string, body []byte) error {
	var event inventory.StockChanged
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("解析库存事件失败: %v: %w", err, mq.ErrDrop)
	}
	if event.StoreID == 0 || event.BookID == 0 {
		return fmt.Errorf("库存事件缺少store_id或book_id: %w", mq.ErrDrop)
	}

	// 增加库存不会触发告警
	if event.Type == inventory.EventStockAdded {
		return nil
	}
	if !inventory.IsLowStock(event.Quantity, h.threshold) {
		zerolog.Ctx(ctx).Debug().Str("routing_key", routingKey).Int("quantity", event.Quantity).Msg("库存充足")
		return nil
	}

	return h.notifier.Notify(ctx, Alert{
		StoreID:   event.StoreID,
		BookID:    event.BookID,
		Quantity:  event.Quantity,
		Threshold: h.threshold,
		Depleted:  event.Type == inventory.EventStockDepleted,
	})
}
