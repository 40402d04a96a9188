package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/pkg/circuitbreaker"
	"github.com/xiebiao/bookledger/pkg/metrics"
)

// QuantityCache 库存数量缓存（Cache-Aside）
//
// 教学要点：
//  1. 读：先查Redis，未命中再查数据库并回填，TTL兜底
//  2. 写：账本事务提交后删除缓存（而不是更新缓存）
//  3. 并发未命中用singleflight合并，同一个key同时只有一个回源查询
//  4. Redis调用包在熔断器里，Redis故障时直接读数据库，不拖慢请求
//
// 回填旧值问题：
//
//	读者：GET未命中 → 查库得到10
//	写者：提交取出4本（库存6） → DEL
//	读者：SET 10          ← 旧值写回，整个TTL内都读到10
//
// 解决：每个key配一个版本号。Invalidate先INCR版本再DEL；
// 读者回源前记下版本，回填用Lua脚本比较版本，版本变了就放弃回填
//
// Key设计：
//   - inventory:qty:{store_id}:{book_id}     数量
//   - inventory:qtyver:{store_id}:{book_id}  版本号
type QuantityCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	group   singleflight.Group
}

// versionTTL 版本号的过期时间，必须远大于数量的TTL
// 版本号过期后读到的是空版本，与任何INCR后的值都不相等，不会误判
const versionTTL = 24 * time.Hour

// fillScript 版本未变化时才回填
// KEYS[1]=数量key KEYS[2]=版本key ARGV[1]=回源前读到的版本 ARGV[2]=数量 ARGV[3]=TTL（毫秒）
var fillScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if cur == false then cur = '' end
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript 版本号+1并删除数量，两步在Redis里原子执行
// KEYS[1]=版本key KEYS[2]=数量key ARGV[1]=版本TTL（毫秒）
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return 1
`)

// NewQuantityCache 创建库存数量缓存
func NewQuantityCache(client redis.Cmdable, cfg config.CacheConfig) *QuantityCache {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := circuitbreaker.NewCircuitBreaker("redis-quantity-cache", circuitbreaker.Config{
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		// 缓存未命中是正常结果，不计为失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetBreakerState(name, int(to))
			zerolog.Ctx(context.Background()).Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("熔断器状态变化")
		},
	})

	return &QuantityCache{
		client:  client,
		ttl:     cfg.QuantityTTL,
		breaker: breaker,
	}
}

// GetOrLoad 读取数量，未命中时调用load回源并回填
// Redis不可用时退化为直接调用load
func (c *QuantityCache) GetOrLoad(ctx context.Context, key inventory.Key, load func(context.Context) (int, error)) (int, error) {
	k := quantityKey(key)

	qty, hit, err := c.get(ctx, k)
	switch {
	case err != nil:
		metrics.ObserveCache("error")
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", k).Msg("读取库存缓存失败，回源数据库")
	case hit:
		metrics.ObserveCache("hit")
		return qty, nil
	default:
		metrics.ObserveCache("miss")
	}

	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		// 版本必须在查库之前读取：之后提交的变更一定会改变版本
		version, verErr := c.version(ctx, key)

		fresh, err := load(ctx)
		if err != nil {
			return 0, err
		}
		if verErr != nil {
			zerolog.Ctx(ctx).Debug().Err(verErr).Str("key", k).Msg("读取缓存版本失败，跳过回填")
			return fresh, nil
		}

		filled, err := c.fill(ctx, key, version, fresh)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Debug().Err(err).Str("key", k).Msg("回填库存缓存失败")
		case !filled:
			metrics.ObserveCache("stale_fill_skipped")
			zerolog.Ctx(ctx).Debug().Str("key", k).Msg("回源期间库存已变更，放弃回填")
		}
		return fresh, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Invalidate 版本号+1并删除缓存
// 同时Forget掉正在进行的回源，后续读者不会加入一个可能读到旧值的查询
func (c *QuantityCache) Invalidate(ctx context.Context, key inventory.Key) error {
	c.group.Forget(quantityKey(key))

	err := c.execute(func() error {
		return invalidateScript.Run(ctx, c.client,
			[]string{versionKey(key), quantityKey(key)},
			versionTTL.Milliseconds(),
		).Err()
	})
	if err != nil {
		return fmt.Errorf("删除库存缓存失败: %w", err)
	}
	return nil
}

func (c *QuantityCache) get(ctx context.Context, k string) (int, bool, error) {
	var val string
	err := c.execute(func() error {
		var err error
		val, err = c.client.Get(ctx, k).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	qty, err := strconv.Atoi(val)
	if err != nil {
		// 值损坏按未命中处理，回源后会被覆盖
		return 0, false, nil
	}
	return qty, true, nil
}

// version 当前版本号，从未失效过的key返回空字符串
func (c *QuantityCache) version(ctx context.Context, key inventory.Key) (string, error) {
	var val string
	err := c.execute(func() error {
		var err error
		val, err = c.client.Get(ctx, versionKey(key)).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// fill 版本未变化时写入数量，返回是否写入
func (c *QuantityCache) fill(ctx context.Context, key inventory.Key, version string, qty int) (bool, error) {
	var n int64
	err := c.execute(func() error {
		var err error
		n, err = fillScript.Run(ctx, c.client,
			[]string{quantityKey(key), versionKey(key)},
			version, qty, c.ttl.Milliseconds(),
		).Int64()
		return err
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *QuantityCache) execute(req func() error) error {
	err := c.breaker.Execute(req)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.IncBreakerRequest(c.breaker.Name(), "rejected")
	case err == nil || errors.Is(err, redis.Nil):
		metrics.IncBreakerRequest(c.breaker.Name(), "success")
	default:
		metrics.IncBreakerRequest(c.breaker.Name(), "failure")
	}
	return err
}

func quantityKey(key inventory.Key) string {
	return fmt.Sprintf("inventory:qty:%d:%d", key.StoreID, key.BookID)
}

func versionKey(key inventory.Key) string {
	return fmt.Sprintf("inventory:qtyver:%d:%d", key.StoreID, key.BookID)
}
