package messaging

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
)

// Publisher 发布JSON消息（由mq.Publisher实现）
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// StockEventPublisher 把库存事件发到消息队列
// routing key由事件类型决定：inventory.stock.added / removed / depleted
type StockEventPublisher struct {
	publisher Publisher
}

// NewStockEventPublisher 创建库存事件发布者
func NewStockEventPublisher(publisher Publisher) *StockEventPublisher {
	return &StockEventPublisher{publisher: publisher}
}

// PublishStockChanged 实现inventory.EventPublisher
func (p *StockEventPublisher) PublishStockChanged(ctx context.Context, event inventory.StockChanged) error {
	return p.publisher.Publish(ctx, event.Type.RoutingKey(), event)
}
