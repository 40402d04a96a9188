package inventory

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
)

// QuantityCache 库存数量读缓存
// Redis实现见infrastructure/persistence/redis.QuantityCache
type QuantityCache interface {
	// GetOrLoad 命中直接返回，否则调用load回源
	GetOrLoad(ctx context.Context, key inventory.Key, load func(context.Context) (int, error)) (int, error)

	// Invalidate 库存变更提交后删除缓存
	Invalidate(ctx context.Context, key inventory.Key) error
}

// NopCache 不缓存，每次都回源（缓存关闭时使用）
type NopCache struct{}

func (NopCache) GetOrLoad(ctx context.Context, _ inventory.Key, load func(context.Context) (int, error)) (int, error) {
	return load(ctx)
}

func (NopCache) Invalidate(context.Context, inventory.Key) error { return nil }

// NopPublisher 丢弃库存事件（消息队列关闭时使用）
type NopPublisher struct{}

func (NopPublisher) PublishStockChanged(context.Context, inventory.StockChanged) error { return nil }
