package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// inventoryRepository 库存仓储实现
//
// 教学要点：
//  1. 增加用upsert一条语句完成，不存在"先查后插"的竞态：
//     MySQL:  INSERT ... ON DUPLICATE KEY UPDATE quantity = quantity + ?
//     SQLite: INSERT ... ON CONFLICT (store_id, book_id) DO UPDATE SET quantity = quantity + ?
//  2. 扣减先SELECT ... FOR UPDATE锁行，再做条件UPDATE/DELETE;
//     条件不满足（影响0行）说明并发修改，由账本服务回滚
//  3. 所有方法都通过dbFrom取事务DB
//  4. 插入受外键约束，引用的书店和图书必须存在
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByKey(ctx context.Context, key inventory.Key) (*inventory.Record, error) {
	return r.find(dbFrom(ctx, r.db), key)
}

// LockByKey 悲观锁读取（SQLite不支持FOR UPDATE，方言会忽略该子句，由数据库级写锁保证串行）
func (r *inventoryRepository) LockByKey(ctx context.Context, key inventory.Key) (*inventory.Record, error) {
	return r.find(dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (r *inventoryRepository) find(db *gorm.DB, key inventory.Key) (*inventory.Record, error) {
	var model InventoryModel
	err := db.Where("store_id = ? AND book_id = ?", key.StoreID, key.BookID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}
	return toRecord(&model), nil
}

func (r *inventoryRepository) Increment(ctx context.Context, key inventory.Key, quantity int) (*inventory.Record, error) {
	db := dbFrom(ctx, r.db)
	now := time.Now()

	model := &InventoryModel{
		StoreID:   key.StoreID,
		BookID:    key.BookID,
		Quantity:  quantity,
		UpdatedAt: now,
	}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": now,
		}),
	}).Create(model).Error
	if err != nil {
		// 书店不提供删除，外键冲突只能是图书在账本检查之后被并发删除
		if isForeignKeyError(err) {
			return nil, inventory.BookNotFound(key.BookID)
		}
		return nil, apperrors.Wrap(err, "增加库存失败")
	}

	// upsert不返回更新后的值，在同一事务内重新读取
	rec, err := r.find(db, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.New(apperrors.ErrCodeDatabaseError, "增加库存后记录丢失")
	}
	return rec, nil
}

func (r *inventoryRepository) Decrement(ctx context.Context, key inventory.Key, quantity int) (bool, error) {
	result := dbFrom(ctx, r.db).Model(&InventoryModel{}).
		Where("store_id = ? AND book_id = ? AND quantity > ?", key.StoreID, key.BookID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "扣减库存失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *inventoryRepository) DeleteIfQuantity(ctx context.Context, key inventory.Key, quantity int) (bool, error) {
	result := dbFrom(ctx, r.db).
		Where("store_id = ? AND book_id = ? AND quantity = ?", key.StoreID, key.BookID, quantity).
		Delete(&InventoryModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "删除库存记录失败")
	}
	return result.RowsAffected == 1, nil
}

func (r *inventoryRepository) ListByStore(ctx context.Context, storeID uint) ([]*inventory.Record, error) {
	return r.list(dbFrom(ctx, r.db).Where("store_id = ?", storeID).Order("book_id ASC"))
}

func (r *inventoryRepository) ListByBook(ctx context.Context, bookID uint) ([]*inventory.Record, error) {
	return r.list(dbFrom(ctx, r.db).Where("book_id = ?", bookID).Order("store_id ASC"))
}

func (r *inventoryRepository) list(query *gorm.DB) ([]*inventory.Record, error) {
	var models []InventoryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询库存列表失败")
	}

	records := make([]*inventory.Record, len(models))
	for i := range models {
		records[i] = toRecord(&models[i])
	}
	return records, nil
}

func toRecord(model *InventoryModel) *inventory.Record {
	return &inventory.Record{
		StoreID:   model.StoreID,
		BookID:    model.BookID,
		Quantity:  model.Quantity,
		UpdatedAt: model.UpdatedAt,
	}
}
