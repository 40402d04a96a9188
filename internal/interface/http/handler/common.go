package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookledger/pkg/errors"
	"github.com/xiebiao/bookledger/pkg/response"
)

// bindFailed 参数绑定失败统一返回40901
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}

// pathID 解析路径参数中的正整数ID
// 解析失败时已经写入响应，调用方直接return
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}
