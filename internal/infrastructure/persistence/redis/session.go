package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// SessionStore 会话存储
// 设计说明：
// 1. 登录时记录会话（邮箱、角色、登录时间），登出时删除
// 2. JWT黑名单：登出后的Access Token在过期前都不能再用
// 3. Key设计：session:{user_id}、blacklist:{token}
type SessionStore struct {
	client redis.Cmdable
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

// Session 登录会话
type Session struct {
	Email    string
	Role     string
	LoginAt  time.Time
	ClientIP string
}

// SaveSession 保存用户会话，TTL与Refresh Token一致
// 学习要点：用Pipeline把HSet和Expire合并成一次往返
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sess Session, ttl time.Duration) error {
	key := sessionKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"email", sess.Email,
		"role", sess.Role,
		"login_at", strconv.FormatInt(sess.LoginAt.Unix(), 10),
		"client_ip", sess.ClientIP,
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取用户会话，不存在时返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	sess := &Session{
		Email:    result["email"],
		Role:     result["role"],
		ClientIP: result["client_ip"],
	}
	if ts, err := strconv.ParseInt(result["login_at"], 10, 64); err == nil {
		sess.LoginAt = time.Unix(ts, 0)
	}
	return sess, nil
}

// DeleteSession 删除用户会话（登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单，TTL取Access Token剩余有效期
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// 已经过期的Token无需拉黑
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return n > 0, nil
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}
