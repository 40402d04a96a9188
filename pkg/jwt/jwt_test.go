package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(42, "manager@bookstore.com", "STORE_MANAGER")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "manager@bookstore.com", claims.Email)
	assert.Equal(t, "STORE_MANAGER", claims.Role)
	assert.Equal(t, "bookledger", claims.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.UserID)
	assert.Empty(t, refresh.Role, "Refresh Token不应携带角色")
}

func TestManager_ParseToken_Failures(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	t.Run("签名密钥不一致", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour, time.Hour)
		pair, err := other.GenerateToken(1, "a@b.com", "ADMIN")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("Token已过期", func(t *testing.T) {
		expired := NewManager("test-secret", -time.Minute, time.Hour)
		pair, err := expired.GenerateToken(1, "a@b.com", "ADMIN")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(7, "u@bookstore.com", "USER")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken, "u@bookstore.com", "STORE_MANAGER")
	require.NoError(t, err)

	claims, err := m.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "STORE_MANAGER", claims.Role)
}
