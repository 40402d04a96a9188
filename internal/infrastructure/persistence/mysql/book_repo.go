package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookledger/internal/domain/book"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
)

// bookRepository 图书仓储实现
// 设计说明：
// 1. 负责domain实体与GORM模型之间的转换
// 2. 处理数据库特定的错误（如ISBN重复），转换为业务错误
// 3. 所有查询经过dbFrom，在账本事务内调用时使用同一事务
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		ISBN:   b.ISBN,
		Title:  b.Title,
		Author: b.Author,
		Price:  b.Price,
	}

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return count > 0, nil
}

// Update 更新可变字段
// 注意：不用Save,Save会用零值覆盖created_at
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{ID: b.ID}).Updates(map[string]interface{}{
		"isbn":       b.ISBN,
		"title":      b.Title,
		"author":     b.Author,
		"price":      b.Price,
		"updated_at": b.UpdatedAt,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		// 应用层检查之后仍有书店并发增加了库存，由外键拦下
		if isForeignKeyError(result.Error) {
			return book.ErrBookInStock.WithDetails(map[string]interface{}{"book_id": id})
		}
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.NotFound(id)
	}
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)
	query := dbFrom(ctx, r.db).Model(&BookModel{})

	// 关键词搜索（标题、作者、ISBN）
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", keyword, keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "title_asc":
		query = query.Order("title ASC")
	default:
		query = query.Order("created_at DESC")
	}
	// 同一排序值时按ID稳定排序，保证翻页不重复
	query = query.Order("id DESC")

	var models []BookModel
	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:        model.ID,
		ISBN:      model.ISBN,
		Title:     model.Title,
		Author:    model.Author,
		Price:     model.Price,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
