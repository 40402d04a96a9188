// Command seed 初始化管理员账号
//
// 可重复执行：账号已存在时什么也不做
//
//	BOOKSTORE_SEED_ADMIN_PASSWORD=xxx go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	appuser "github.com/xiebiao/bookledger/internal/application/user"
	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/infrastructure/config"
	"github.com/xiebiao/bookledger/internal/infrastructure/logger"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	l, closer, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer closer.Close()
	logger.Install(l)

	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Error().Err(err).Msg("连接数据库失败")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ensureAdmin := appuser.NewEnsureAdminUseCase(user.NewService(mysql.NewUserRepository(db)))
	created, err := ensureAdmin.Execute(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		log.Error().Err(err).Str("email", cfg.Seed.AdminEmail).Msg("创建管理员失败")
		os.Exit(1)
	}
	if created {
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("管理员已创建")
		return
	}
	log.Info().Str("email", cfg.Seed.AdminEmail).Msg("管理员已存在,跳过")
}
