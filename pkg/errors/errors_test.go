package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	notFound := New(ErrCodeStoreNotFound, "书店不存在")
	withDetails := notFound.WithDetails(map[string]interface{}{"store_id": uint(7)})

	assert.True(t, errors.Is(withDetails, notFound), "携带详情的错误应与原始错误按码匹配")
	assert.False(t, errors.Is(withDetails, ErrForbidden))
	assert.Nil(t, notFound.Details, "WithDetails不应修改共享的预定义错误")
	assert.Equal(t, uint(7), withDetails.Details["store_id"])
}

func TestAppError_WrappedByFmt(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrUnauthorized)

	assert.True(t, errors.Is(wrapped, ErrUnauthorized))
	assert.Same(t, ErrUnauthorized, GetAppError(wrapped))
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	plain := errors.New("connection reset")

	appErr := GetAppError(plain)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
	assert.False(t, IsAppError(plain))
	assert.True(t, IsAppError(appErr))
}

func TestAppError_ErrorString(t *testing.T) {
	assert.Equal(t, "[40104] 无权限访问", ErrForbidden.Error())

	err := Wrapf(errors.New("timeout"), "查询%s失败", "库存")
	assert.Equal(t, "[50000] 查询库存失败: timeout", err.Error())
}
