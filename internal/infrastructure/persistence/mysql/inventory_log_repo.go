package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存日志仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Create(ctx context.Context, l *inventory.ChangeLog) error {
	model := &InventoryLogModel{
		StoreID:    l.StoreID,
		BookID:     l.BookID,
		ChangeType: string(l.ChangeType),
		Delta:      l.Delta,
		Before:     l.Before,
		After:      l.After,
		OperatorID: l.OperatorID,
		CreatedAt:  l.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存日志失败")
	}
	l.ID = model.ID
	return nil
}

// List 按ID倒序（最新的在前）
func (r *inventoryLogRepository) List(ctx context.Context, key inventory.Key, page, pageSize int) ([]*inventory.ChangeLog, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := dbFrom(ctx, r.db).Model(&InventoryLogModel{}).
		Where("store_id = ? AND book_id = ?", key.StoreID, key.BookID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存日志总数失败")
	}

	var models []InventoryLogModel
	if err := query.Order("id DESC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存日志失败")
	}

	logs := make([]*inventory.ChangeLog, len(models))
	for i, m := range models {
		logs[i] = &inventory.ChangeLog{
			ID:         m.ID,
			StoreID:    m.StoreID,
			BookID:     m.BookID,
			ChangeType: inventory.ChangeType(m.ChangeType),
			Delta:      m.Delta,
			Before:     m.Before,
			After:      m.After,
			OperatorID: m.OperatorID,
			CreatedAt:  m.CreatedAt,
		}
	}
	return logs, total, nil
}
