package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	appinventory "github.com/xiebiao/bookledger/internal/application/inventory"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/internal/infrastructure/messaging"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/redis"
	grpcserver "github.com/xiebiao/bookledger/internal/interface/grpc"
	"github.com/xiebiao/bookledger/internal/interface/http/handler"
	"github.com/xiebiao/bookledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookledger/internal/interface/http/router"
	"github.com/xiebiao/bookledger/pkg/jwt"
	"github.com/xiebiao/bookledger/pkg/mq"
)

// ========================================
// Custom Providers （自定义Provider）
// ========================================
// 教学说明：
// 有些依赖的构造函数参数不是直接的类型，需要从Config中提取；
// 需要释放的资源（数据库、Redis、MQ连接）返回cleanup函数，
// Wire会按创建的逆序调用

// provideDB 创建数据库连接，cleanup时关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedisClient 创建Redis客户端，cleanup时关闭
func provideRedisClient(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 会话和Token黑名单存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideQuantityCache 数量缓存默认关闭
// 关闭时账本每次都读数据库
func provideQuantityCache(cfg *config.Config, client *goredis.Client) appinventory.QuantityCache {
	if !cfg.Cache.Enabled {
		return appinventory.NopCache{}
	}
	log.Info().Dur("ttl", cfg.Cache.QuantityTTL).Msg("库存数量缓存已启用")
	return redis.NewQuantityCache(client, cfg.Cache)
}

// provideEventPublisher 未启用消息队列时事件直接丢弃
func provideEventPublisher(cfg *config.Config) (inventory.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return appinventory.NopPublisher{}, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭消息发布者失败")
		}
	}
	return messaging.NewStockEventPublisher(publisher), cleanup, nil
}

// provideRouter 创建Gin引擎并注册路由
func provideRouter(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	storeHandler *handler.StoreHandler,
	inventoryHandler *handler.InventoryHandler,
) *gin.Engine {
	return router.New(
		router.Options{
			Mode:          cfg.Server.Mode,
			EnableSwagger: cfg.Server.Mode != gin.ReleaseMode,
		},
		log.Logger,
		authMiddleware,
		router.Handlers{
			User:      userHandler,
			Book:      bookHandler,
			Store:     storeHandler,
			Inventory: inventoryHandler,
		},
	)
}

// provideGRPCServer 健康检查服务器
func provideGRPCServer() *grpcserver.Server {
	return grpcserver.NewServer()
}
