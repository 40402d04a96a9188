package user

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookledger/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对（Access Token携带角色）
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	sess := redis.Session{
		Email:    u.Email,
		Role:     string(u.Role),
		LoginAt:  time.Now(),
		ClientIP: req.ClientIP,
	}
	// 会话有效期 = Refresh Token有效期
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sess, uc.jwtManager.RefreshTokenTTL()); err != nil {
		// 会话保存失败不影响登录
		zerolog.Ctx(ctx).Warn().Err(err).Uint("user_id", u.ID).Msg("保存会话失败")
	}

	return &LoginResponse{
		User:         *toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore}
}

// Execute 执行登出
// expiresAt是Access Token的过期时间，黑名单只需保留到那一刻
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string, expiresAt time.Time) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, time.Until(expiresAt).Round(time.Second))
}

// RefreshTokenUseCase 用Refresh Token换新的Access Token
// 重新查库取角色，角色变更在下一次刷新时生效
type RefreshTokenUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(userService user.Service, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userService: userService, jwtManager: jwtManager}
}

// Execute 执行刷新
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := uc.jwtManager.RefreshAccessToken(refreshToken, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
