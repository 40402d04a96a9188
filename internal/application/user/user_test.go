package user

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/dbtest"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
	"github.com/xiebiao/bookledger/pkg/jwt"
)

func newUserService(t *testing.T) user.Service {
	t.Helper()
	return user.NewServiceWithCost(mysql.NewUserRepository(dbtest.NewSQLite(t)), bcrypt.MinCost)
}

func TestRegisterUseCase(t *testing.T) {
	ctx := context.Background()
	uc := NewRegisterUseCase(newUserService(t))

	info, err := uc.Execute(ctx, RegisterRequest{Email: "manager@bookstore.com", Password: "manager123", Role: "STORE_MANAGER"})
	require.NoError(t, err)
	assert.Equal(t, "STORE_MANAGER", info.Role)

	info, err = uc.Execute(ctx, RegisterRequest{Email: "reader@bookstore.com", Password: "reader123"})
	require.NoError(t, err)
	assert.Equal(t, "USER", info.Role, "角色为空时为普通用户")

	_, err = uc.Execute(ctx, RegisterRequest{Email: "x@bookstore.com", Password: "password1", Role: "ROOT"})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestEnsureAdminUseCase(t *testing.T) {
	ctx := context.Background()
	uc := NewEnsureAdminUseCase(newUserService(t))

	created, err := uc.Execute(ctx, "admin@bookstore.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.Execute(ctx, "admin@bookstore.com", "admin123")
	require.NoError(t, err)
	assert.False(t, created, "重复执行不应报错")
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(t)
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	client, _ := redismock.NewClientMock()
	sessions := redis.NewSessionStore(client)

	_, err := NewRegisterUseCase(svc).Execute(ctx, RegisterRequest{Email: "admin@bookstore.com", Password: "admin123", Role: "ADMIN"})
	require.NoError(t, err)

	login := NewLoginUseCase(svc, jwtManager, sessions)

	t.Run("密码错误", func(t *testing.T) {
		_, err := login.Execute(ctx, LoginRequest{Email: "admin@bookstore.com", Password: "wrong1234"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	// 没有设置Redis期望，会话保存失败不影响登录
	resp, err := login.Execute(ctx, LoginRequest{Email: "ADMIN@bookstore.com", Password: "admin123", ClientIP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := jwtManager.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)

	t.Run("刷新Token", func(t *testing.T) {
		refreshed, err := NewRefreshTokenUseCase(svc, jwtManager).Execute(ctx, resp.RefreshToken)
		require.NoError(t, err)

		claims, err := jwtManager.ParseToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, "admin@bookstore.com", claims.Email)
		assert.Equal(t, "ADMIN", claims.Role)
	})

	t.Run("无效的Refresh Token", func(t *testing.T) {
		_, err := NewRefreshTokenUseCase(svc, jwtManager).Execute(ctx, "not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestLogoutUseCase(t *testing.T) {
	client, mock := redismock.NewClientMock()
	uc := NewLogoutUseCase(redis.NewSessionStore(client))

	mock.ExpectDel("session:7").SetVal(1)
	mock.ExpectSet("blacklist:tok", "revoked", time.Hour).SetVal("OK")

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, uc.Execute(context.Background(), 7, "tok", expiresAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
