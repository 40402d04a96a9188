package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/pkg/circuitbreaker"
)

var testCacheConfig = config.CacheConfig{
	Enabled:         true,
	QuantityTTL:     30 * time.Second,
	BreakerFailures: 2,
	BreakerTimeout:  time.Minute,
}

func TestQuantityCache_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)
	key := inventory.Key{StoreID: 1, BookID: 2}

	mock.ExpectGet("inventory:qty:1:2").SetVal("7")

	qty, err := cache.GetOrLoad(context.Background(), key, func(context.Context) (int, error) {
		t.Fatal("命中缓存时不应回源")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuantityCache_MissLoadsAndFills(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)
	key := inventory.Key{StoreID: 3, BookID: 4}

	mock.ExpectGet("inventory:qty:3:4").RedisNil()
	mock.ExpectGet("inventory:qtyver:3:4").SetVal("2")
	mock.ExpectEvalSha(fillScript.Hash(), []string{"inventory:qty:3:4", "inventory:qtyver:3:4"}, "2", 5, int64(30000)).SetVal(int64(1))

	loads := 0
	qty, err := cache.GetOrLoad(context.Background(), key, func(context.Context) (int, error) {
		loads++
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
	assert.Equal(t, 1, loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 回源期间发生了提交：回填必须带上回源前的版本，版本已变时脚本不写入
func TestQuantityCache_InvalidateDuringLoadSkipsStaleFill(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)
	ctx := context.Background()
	key := inventory.Key{StoreID: 1, BookID: 2}
	keys := []string{"inventory:qty:1:2", "inventory:qtyver:1:2"}

	mock.ExpectGet("inventory:qty:1:2").RedisNil()
	mock.ExpectGet("inventory:qtyver:1:2").RedisNil()
	// 写者提交后：版本+1并删除数量
	mock.ExpectEvalSha(invalidateScript.Hash(), []string{"inventory:qtyver:1:2", "inventory:qty:1:2"}, int64(24*60*60*1000)).SetVal(int64(1))
	// 读者回填：带着回源前的空版本，Redis中版本已是1，脚本返回0
	mock.ExpectEvalSha(fillScript.Hash(), keys, "", 10, int64(30000)).SetVal(int64(0))

	qty, err := cache.GetOrLoad(ctx, key, func(ctx context.Context) (int, error) {
		// 读者查到10之后，写者提交了取出4本并删除缓存
		require.NoError(t, cache.Invalidate(ctx, key))
		return 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, qty, "本次读取返回的是回源时的值")
	assert.NoError(t, mock.ExpectationsWereMet(), "回填只能经过版本比较脚本，不能直接SET")

	// 下一次读取未命中，重新回源拿到新值
	mock.ExpectGet("inventory:qty:1:2").RedisNil()
	mock.ExpectGet("inventory:qtyver:1:2").SetVal("1")
	mock.ExpectEvalSha(fillScript.Hash(), keys, "1", 6, int64(30000)).SetVal(int64(1))

	qty, err = cache.GetOrLoad(ctx, key, func(context.Context) (int, error) { return 6, nil })
	require.NoError(t, err)
	assert.Equal(t, 6, qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuantityCache_LoadError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)

	mock.ExpectGet("inventory:qty:1:1").RedisNil()
	mock.ExpectGet("inventory:qtyver:1:1").RedisNil()

	_, err := cache.GetOrLoad(context.Background(), inventory.Key{StoreID: 1, BookID: 1}, func(context.Context) (int, error) {
		return 0, inventory.StoreNotFound(1)
	})
	assert.ErrorIs(t, err, inventory.ErrStoreNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuantityCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)
	key := inventory.Key{StoreID: 9, BookID: 8}
	keys := []string{"inventory:qtyver:9:8", "inventory:qty:9:8"}
	ttl := versionTTL.Milliseconds()

	mock.ExpectEvalSha(invalidateScript.Hash(), keys, ttl).SetVal(int64(1))
	require.NoError(t, cache.Invalidate(context.Background(), key))

	mock.ExpectEvalSha(invalidateScript.Hash(), keys, ttl).SetErr(errors.New("connection refused"))
	assert.Error(t, cache.Invalidate(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuantityCache_BreakerFallsBackToLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewQuantityCache(db, testCacheConfig)
	key := inventory.Key{StoreID: 1, BookID: 1}
	down := errors.New("connection refused")

	// 两次连续失败（读数量 + 读版本）后熔断，不再尝试回填
	mock.ExpectGet("inventory:qty:1:1").SetErr(down)
	mock.ExpectGet("inventory:qtyver:1:1").SetErr(down)

	loads := 0
	load := func(context.Context) (int, error) {
		loads++
		return 3, nil
	}

	qty, err := cache.GetOrLoad(context.Background(), key, load)
	require.NoError(t, err, "Redis故障不影响读取")
	assert.Equal(t, 3, qty)
	assert.Equal(t, circuitbreaker.StateOpen, cache.breaker.State())

	// 熔断期间不再访问Redis
	qty, err = cache.GetOrLoad(context.Background(), key, load)
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
	assert.Equal(t, 2, loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
