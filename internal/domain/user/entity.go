package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码只存bcrypt哈希，实体不提供任何返回明文的方法
// 2. 角色直接存在用户行上（ADMIN/STORE_MANAGER/USER），签发Token时写入Claims
// 3. 领域实体不依赖GORM tag（infrastructure层负责映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ChangeRole 修改角色（领域行为）
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}
