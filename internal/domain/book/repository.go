package book

import (
	"context"
)

// Repository 图书仓储接口（依赖倒置原则）
// 设计说明：
// 1. 由domain层定义接口，infrastructure层实现
// 2. 实现需要感知事务：在TxManager.Transaction内调用时使用同一个事务
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 不存在时返回ErrBookNotFound
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Exists 只判断存在性，供库存账本的目录查询使用
	Exists(ctx context.Context, id uint) (bool, error)

	Update(ctx context.Context, book *Book) error

	// Delete 物理删除
	Delete(ctx context.Context, id uint) error

	// List 分页查询，params包含page, pageSize, keyword, sortBy
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码（从1开始）
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词（标题、作者、ISBN）
	SortBy   string // price_asc | price_desc | title_asc | created_at_desc（默认）
}
