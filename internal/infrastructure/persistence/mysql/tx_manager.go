package mysql

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 教学要点：
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB（避免全局变量）
// 3. 嵌套调用时GORM自动使用Savepoint
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内所有Repository操作都在同一事务中；fn返回error时ROLLBACK，返回nil时COMMIT
//
// 使用示例：
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    rec, err := inventoryRepo.LockByKey(ctx, key)
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	    return logRepo.Create(ctx, changeLog)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFrom(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom 从context获取事务DB，如果没有则使用默认DB
// 注意：事务内的所有查询都必须经过这里，否则会拿到事务外的连接
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
