// Package catalog 目录查询：库存账本在变更前确认书店和图书存在
package catalog

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/book"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/domain/store"
)

// Lookup 基于书店、图书仓储的存在性查询
// 仓储从ctx取事务，在账本事务内调用时和库存变更处于同一事务
type Lookup struct {
	stores store.Repository
	books  book.Repository
}

var _ inventory.CatalogLookup = (*Lookup)(nil)

// NewLookup 创建目录查询
func NewLookup(stores store.Repository, books book.Repository) *Lookup {
	return &Lookup{stores: stores, books: books}
}

func (l *Lookup) StoreExists(ctx context.Context, storeID uint) (bool, error) {
	if storeID == 0 {
		return false, nil
	}
	return l.stores.Exists(ctx, storeID)
}

func (l *Lookup) BookExists(ctx context.Context, bookID uint) (bool, error) {
	if bookID == 0 {
		return false, nil
	}
	return l.books.Exists(ctx, bookID)
}
