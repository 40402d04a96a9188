package inventory

import (
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// 库存领域错误
// 学习要点：AppError.Is按错误码比较，
// 所以带详情的错误（Insufficient等）仍满足 errors.Is(err, ErrInsufficientStock)
var (
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须为正整数")
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// 与store/book包的错误码相同，库存包不依赖目录包
	ErrStoreNotFound = apperrors.New(apperrors.ErrCodeStoreNotFound, "书店不存在")
	ErrBookNotFound  = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")
)

// Insufficient 库存不足，携带请求数量和可用数量
func Insufficient(key Key, requested, available int) error {
	return ErrInsufficientStock.WithDetails(map[string]interface{}{
		"store_id":  key.StoreID,
		"book_id":   key.BookID,
		"requested": requested,
		"available": available,
	})
}

// StoreNotFound 书店不存在
func StoreNotFound(storeID uint) error {
	return ErrStoreNotFound.WithDetails(map[string]interface{}{"store_id": storeID})
}

// BookNotFound 图书不存在
func BookNotFound(bookID uint) error {
	return ErrBookNotFound.WithDetails(map[string]interface{}{"book_id": bookID})
}
