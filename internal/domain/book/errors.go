package book

import (
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	ErrInvalidTitle  = apperrors.New(apperrors.ErrCodeInvalidParams, "书名至少2个字符")
	ErrInvalidAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者至少2个字符")

	// ErrBookInStock 仍有书店持有库存，不能删除
	ErrBookInStock = apperrors.New(apperrors.ErrCodeBookInStock, "图书仍有门店库存,无法删除")
)

// NotFound 带图书ID的不存在错误
func NotFound(id uint) error {
	return ErrBookNotFound.WithDetails(map[string]interface{}{"book_id": id})
}
