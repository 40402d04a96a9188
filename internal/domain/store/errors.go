package store

import (
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

var (
	// ErrStoreNotFound 书店不存在
	ErrStoreNotFound = apperrors.New(apperrors.ErrCodeStoreNotFound, "书店不存在")

	// ErrNameDuplicate 书店名称已存在
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeStoreNameDuplicate, "书店名称已存在")

	ErrInvalidName    = apperrors.New(apperrors.ErrCodeInvalidParams, "书店名称至少2个字符")
	ErrInvalidAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "书店地址至少5个字符")
)

// NotFound 带书店ID的不存在错误
func NotFound(id uint) error {
	return ErrStoreNotFound.WithDetails(map[string]interface{}{"store_id": id})
}
