// Package dbtest 提供基于SQLite的测试数据库
//
// 教学说明：
// 仓储和账本测试不依赖外部MySQL，每个测试拿到一个独立的临时数据库文件，
// 表结构与生产一致（同一套AutoMigrate，包括外键）
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
)

// MaxConns 测试库的连接池大小
const MaxConns = 8

// NewSQLite 创建临时SQLite数据库并完成迁移
//
// 注意：
//  1. 连接池有多个连接，并发测试里的语句真正在不同连接上交错执行
//  2. WAL模式下读不阻塞写；写锁冲突由busy_timeout排队等待
//  3. _txlock=immediate：事务开始即拿写锁，避免两个事务都从读锁升级写锁时互相等待
//  4. _foreign_keys=on：SQLite默认不检查外键，每个连接都要打开
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bookledger.db")
	dsn := path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate"
	db, err := mysql.Open(sqlite.Open(dsn), false)
	require.NoError(t, err, "打开SQLite失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(MaxConns)
	sqlDB.SetMaxIdleConns(MaxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.AutoMigrate(db), "迁移表结构失败")
	return db
}

// SeedCatalog 直接写入stores个书店、books个图书，ID分别从1开始连续分配
// 库存表有外键，仓储层测试用它准备被引用的行
func SeedCatalog(t testing.TB, db *gorm.DB, stores, books int) {
	t.Helper()

	for i := 1; i <= stores; i++ {
		require.NoError(t, db.Create(&mysql.StoreModel{
			Name:    fmt.Sprintf("Store %02d", i),
			Address: fmt.Sprintf("%d Main Street", i),
		}).Error)
	}
	for i := 1; i <= books; i++ {
		require.NoError(t, db.Create(&mysql.BookModel{
			ISBN:   fmt.Sprintf("978000000%04d", i),
			Title:  fmt.Sprintf("Book %02d", i),
			Author: "Test Author",
			Price:  1000,
		}).Error)
	}
}
