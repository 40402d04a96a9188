package user

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookledger/internal/domain/user"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. 注册接口只对管理员开放（路由上挂RequireRoles(ADMIN)），由管理员指定角色
// 2. 角色为空时按普通用户处理
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.Register(ctx, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Uint("user_id", u.ID).Str("role", string(u.Role)).Msg("用户已注册")
	return toUserInfo(u), nil
}

// EnsureAdminUseCase 初始化管理员账号（seed命令使用）
// 已存在时不做任何修改
type EnsureAdminUseCase struct {
	userService user.Service
}

// NewEnsureAdminUseCase 创建用例
func NewEnsureAdminUseCase(userService user.Service) *EnsureAdminUseCase {
	return &EnsureAdminUseCase{userService: userService}
}

// Execute 返回true表示本次新建了账号
func (uc *EnsureAdminUseCase) Execute(ctx context.Context, email, password string) (bool, error) {
	_, err := uc.userService.Register(ctx, email, password, user.RoleAdmin)
	if errors.Is(err, apperrors.ErrEmailDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Role     string // ADMIN | STORE_MANAGER | USER，空表示USER
}

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}
