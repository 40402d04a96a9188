package user

import (
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// Role 用户角色
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleStoreManager Role = "STORE_MANAGER"
	RoleUser         Role = "USER"
)

// ErrInvalidRole 未知角色
var ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的角色")

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStoreManager, RoleUser:
		return true
	}
	return false
}

// ParseRole 解析角色，空字符串按普通用户处理
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Authorize 访问门禁：role在allowed中返回nil，否则ErrForbidden
// allowed为空表示只要求登录，任何角色都放行
//
// 库存写操作：Authorize(role, RoleAdmin, RoleStoreManager)
// 库存读操作：只要求登录
func Authorize(role Role, allowed ...Role) error {
	if !role.IsValid() {
		return apperrors.ErrForbidden
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return apperrors.ErrForbidden
}
