//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewInventoryRepository）
// - Injector: 声明最终要构造的目标类型（*App）
// - wire.Bind: 把接口绑定到具体实现（如CatalogLookup → *catalog.Lookup）

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookledger/internal/application/book"
	"github.com/xiebiao/bookledger/internal/application/catalog"
	appinventory "github.com/xiebiao/bookledger/internal/application/inventory"
	appstore "github.com/xiebiao/bookledger/internal/application/store"
	appuser "github.com/xiebiao/bookledger/internal/application/user"
	"github.com/xiebiao/bookledger/internal/domain/book"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/domain/store"
	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookledger/internal/interface/http/handler"
	"github.com/xiebiao/bookledger/internal/interface/http/middleware"
)

// infrastructureSet 基础设施层：数据库、Redis、缓存、消息
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideSessionStore,
	provideQuantityCache,
	provideEventPublisher,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewStoreRepository,
	mysql.NewInventoryRepository,
	mysql.NewInventoryLogRepository,
	mysql.NewTxManager,
)

// domainSet 领域层
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	store.NewService,
)

// applicationSet 应用层
var applicationSet = wire.NewSet(
	catalog.NewLookup,
	wire.Bind(new(inventory.CatalogLookup), new(*catalog.Lookup)),
	appinventory.NewLedger,
	wire.Bind(new(appbook.StockLister), new(*appinventory.Ledger)),

	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,

	appbook.NewCreateBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,

	appstore.NewUseCase,
)

// interfaceSet 接口层：中间件、Handler、路由、gRPC
var interfaceSet = wire.NewSet(
	provideJWTManager,
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	middleware.NewAuthMiddleware,

	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewStoreHandler,
	handler.NewInventoryHandler,

	provideRouter,
	provideGRPCServer,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建逆序释放MQ、Redis、数据库连接
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		NewApp,
	)
	return nil, nil, nil
}
