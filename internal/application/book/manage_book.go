package book

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/book"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
)

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookService book.Service
}

func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// UpdateBookUseCase 部分更新图书
type UpdateBookUseCase struct {
	bookService book.Service
}

func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest nil字段保持不变
type UpdateBookRequest struct {
	ISBN   *string
	Title  *string
	Author *string
	Price  *int64
}

func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req UpdateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.UpdateBook(ctx, id, book.Patch{
		ISBN:   req.ISBN,
		Title:  req.Title,
		Author: req.Author,
		Price:  req.Price,
	})
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// StockLister 查询持有某图书的库存记录（由库存账本实现）
type StockLister interface {
	ListBookStock(ctx context.Context, bookID uint) ([]*inventory.Record, error)
}

// DeleteBookUseCase 删除图书
// 教学要点：
// 仍有书店持有库存时拒绝删除，否则库存记录会引用不存在的图书。
// 检查和删除放在同一事务里
type DeleteBookUseCase struct {
	bookService book.Service
	stock       StockLister
	txManager   *mysql.TxManager
}

func NewDeleteBookUseCase(bookService book.Service, stock StockLister, txManager *mysql.TxManager) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		stock:       stock,
		txManager:   txManager,
	}
}

func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		records, err := uc.stock.ListBookStock(txCtx, id)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			stores := make([]uint, len(records))
			for i, r := range records {
				stores[i] = r.StoreID
			}
			return book.ErrBookInStock.WithDetails(map[string]interface{}{
				"book_id":   id,
				"store_ids": stores,
			})
		}
		return uc.bookService.DeleteBook(txCtx, id)
	})
}
