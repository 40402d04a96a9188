package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/domain/user"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
	"github.com/xiebiao/bookledger/pkg/jwt"
	"github.com/xiebiao/bookledger/pkg/response"
)

// Context键
const (
	ctxUserID    = "user_id"
	ctxEmail     = "email"
	ctxRole      = "role"
	ctxToken     = "access_token"
	ctxTokenExp  = "token_expires_at"
	bearerPrefix = "Bearer"
)

// TokenBlacklist 已登出Token的黑名单（Redis SessionStore实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token有效性
// 4. 将用户信息（含角色）注入Context，操作人ID同时注入request context供库存日志使用
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/stores/:id/books/:bookId/quantity", h.GetQuantity)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 用户已登出或Token被强制失效
		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if revoked {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效,请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}
		c.Request = c.Request.WithContext(inventory.WithOperator(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// RequireRoles 访问门禁：必须在RequireAuth之后使用
// 不传角色时只要求是合法角色
//
//	stock.POST("/add", auth.RequireRoles(user.RoleAdmin, user.RoleStoreManager), h.AddStock)
func (m *AuthMiddleware) RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := user.Authorize(GetRole(c), roles...); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 当前登录用户ID，未登录时为0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) user.Role {
	return user.Role(c.GetString(ctxRole))
}

// GetAccessToken 当前请求的Access Token及其过期时间（登出时拉黑）
func GetAccessToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxToken), c.GetTime(ctxTokenExp)
}
