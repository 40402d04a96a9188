// Package router 组装HTTP路由
//
// 访问门禁：
//   - 库存写操作（增加、取出）和变更日志：ADMIN、STORE_MANAGER
//   - 图书、书店的增改删、创建用户：ADMIN
//   - 其余读操作：登录即可
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/interface/http/handler"
	"github.com/xiebiao/bookledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookledger/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User      *handler.UserHandler
	Book      *handler.BookHandler
	Store     *handler.StoreHandler
	Inventory *handler.InventoryHandler
}

// Options 路由选项
type Options struct {
	Mode          string // debug | release | test
	EnableSwagger bool
}

// New 创建并配置Gin引擎
func New(opts Options, logger zerolog.Logger, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	// 生产环境建议关闭
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	writers := auth.RequireRoles(user.RoleAdmin, user.RoleStoreManager)
	adminOnly := auth.RequireRoles(user.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		// 认证模块
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", h.User.Login)
			authGroup.POST("/refresh", h.User.Refresh)
			authGroup.POST("/register", auth.RequireAuth(), adminOnly, h.User.Register)
			authGroup.POST("/logout", auth.RequireAuth(), h.User.Logout)
		}

		authorized := v1.Group("")
		authorized.Use(auth.RequireAuth(), auth.RequireRoles())

		// 图书模块
		books := authorized.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", adminOnly, h.Book.CreateBook)
			books.PUT("/:id", adminOnly, h.Book.UpdateBook)
			books.DELETE("/:id", adminOnly, h.Book.DeleteBook)
		}

		// 书店模块
		stores := authorized.Group("/bookstores")
		{
			stores.GET("", h.Store.ListStores)
			stores.GET("/:id", h.Store.GetStore)
			stores.POST("", adminOnly, h.Store.CreateStore)
			stores.PUT("/:id", adminOnly, h.Store.UpdateStore)

			// 门店库存
			stores.GET("/:id/books", h.Inventory.ListStoreStock)
			stores.GET("/:id/books/:bookId/quantity", h.Inventory.GetQuantity)
			stores.GET("/:id/books/:bookId/history", writers, h.Inventory.History)
			stores.POST("/:id/books/:bookId", writers, h.Inventory.AddStock)
			stores.DELETE("/:id/books/:bookId", writers, h.Inventory.RemoveStock)
		}
	}

	return r
}
