package inventory

import "context"

// Repository 库存仓储接口
//
// 设计说明：
// 1. 所有写方法都必须在事务内调用（由账本服务保证），实现从ctx取事务
// 2. 写操作都是条件更新，并发下不依赖"先读后写"的结果
type Repository interface {
	// FindByKey 普通读，记录不存在时返回nil, nil
	FindByKey(ctx context.Context, key Key) (*Record, error)

	// LockByKey 加行锁读（SELECT ... FOR UPDATE），记录不存在时返回nil, nil
	LockByKey(ctx context.Context, key Key) (*Record, error)

	// Increment 原子增加数量，记录不存在时以quantity创建
	// 返回增加后的记录
	Increment(ctx context.Context, key Key, quantity int) (*Record, error)

	// Decrement 条件扣减：仅当当前数量>quantity时扣减
	// 返回false表示没有行被更新（数量已被并发修改）
	Decrement(ctx context.Context, key Key, quantity int) (bool, error)

	// DeleteIfQuantity 条件删除：仅当当前数量==quantity时删除
	DeleteIfQuantity(ctx context.Context, key Key, quantity int) (bool, error)

	// ListByStore 书店的全部库存记录，按BookID升序
	ListByStore(ctx context.Context, storeID uint) ([]*Record, error)

	// ListByBook 持有该图书的全部库存记录，按StoreID升序
	ListByBook(ctx context.Context, bookID uint) ([]*Record, error)
}

// LogRepository 库存变更日志仓储（只增不改）
type LogRepository interface {
	Create(ctx context.Context, log *ChangeLog) error

	// List 按时间倒序分页
	List(ctx context.Context, key Key, page, pageSize int) ([]*ChangeLog, int64, error)
}

// CatalogLookup 目录查询：书店/图书是否存在
// 由应用层基于store、book仓储实现，在账本事务内调用
type CatalogLookup interface {
	StoreExists(ctx context.Context, storeID uint) (bool, error)
	BookExists(ctx context.Context, bookID uint) (bool, error)
}
