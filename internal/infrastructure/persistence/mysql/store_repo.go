package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookledger/internal/domain/store"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// storeRepository 书店仓储实现
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建书店仓储
func NewStoreRepository(db *gorm.DB) store.Repository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, s *store.Store) error {
	model := &StoreModel{Name: s.Name, Address: s.Address}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return store.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建书店失败")
	}

	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *storeRepository) FindByID(ctx context.Context, id uint) (*store.Store, error) {
	var model StoreModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.NotFound(id)
		}
		return nil, apperrors.Wrap(err, "查询书店失败")
	}
	return toStoreEntity(&model), nil
}

func (r *storeRepository) FindByName(ctx context.Context, name string) (*store.Store, error) {
	var model StoreModel
	if err := dbFrom(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrStoreNotFound
		}
		return nil, apperrors.Wrap(err, "查询书店失败")
	}
	return toStoreEntity(&model), nil
}

func (r *storeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&StoreModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "查询书店失败")
	}
	return count > 0, nil
}

func (r *storeRepository) Update(ctx context.Context, s *store.Store) error {
	result := dbFrom(ctx, r.db).Model(&StoreModel{ID: s.ID}).Updates(map[string]interface{}{
		"name":       s.Name,
		"address":    s.Address,
		"updated_at": s.UpdatedAt,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return store.ErrNameDuplicate
		}
		return apperrors.Wrap(result.Error, "更新书店失败")
	}
	return nil
}

func (r *storeRepository) List(ctx context.Context, page, pageSize int) ([]*store.Store, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := dbFrom(ctx, r.db).Model(&StoreModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书店总数失败")
	}

	var models []StoreModel
	if err := query.Order("id ASC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询书店列表失败")
	}

	stores := make([]*store.Store, len(models))
	for i := range models {
		stores[i] = toStoreEntity(&models[i])
	}
	return stores, total, nil
}

func toStoreEntity(model *StoreModel) *store.Store {
	return &store.Store{
		ID:        model.ID,
		Name:      model.Name,
		Address:   model.Address,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
