package inventory

import (
	"context"
	"time"
)

// EventType 库存事件类型
type EventType string

const (
	EventStockAdded    EventType = "added"
	EventStockRemoved  EventType = "removed"
	EventStockDepleted EventType = "depleted"
)

// RoutingKey 消息路由键，如 inventory.stock.added
func (t EventType) RoutingKey() string {
	return "inventory.stock." + string(t)
}

// StockChanged 库存变更事件（事务提交后发布）
type StockChanged struct {
	Type       EventType `json:"type"`
	StoreID    uint      `json:"store_id"`
	BookID     uint      `json:"book_id"`
	Delta      int       `json:"delta"`
	Quantity   int       `json:"quantity"` // 变更后的数量，取空时为0
	OperatorID uint      `json:"operator_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStockChanged 根据变更日志生成事件
func NewStockChanged(l *ChangeLog) StockChanged {
	t := EventStockAdded
	switch l.ChangeType {
	case ChangeTypeRemove:
		t = EventStockRemoved
	case ChangeTypeDeplete:
		t = EventStockDepleted
	}
	return StockChanged{
		Type:       t,
		StoreID:    l.StoreID,
		BookID:     l.BookID,
		Delta:      l.Delta,
		Quantity:   l.After,
		OperatorID: l.OperatorID,
		OccurredAt: l.CreatedAt,
	}
}

// EventPublisher 库存事件发布者
// 发布失败不影响已提交的库存变更，调用方只记录日志
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, event StockChanged) error
}

type operatorKey struct{}

// WithOperator 把操作人ID放入ctx，账本写日志时读取
func WithOperator(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, operatorKey{}, userID)
}

// OperatorFrom 读取操作人ID，未设置时返回0
func OperatorFrom(ctx context.Context) uint {
	id, _ := ctx.Value(operatorKey{}).(uint)
	return id
}
