package book

import (
	"context"
	"errors"
	"strings"
)

// Service 图书领域服务接口
// 设计说明：
// 1. 领域服务封装业务规则校验（ISBN格式与唯一性、价格为正）
// 2. 权限由HTTP层的访问门禁负责，这里不再做发布者校验
type Service interface {
	// CreateBook 创建图书
	// 业务规则：
	// - ISBN格式合法（10位或13位）且不重复
	// - 价格>0
	// - 书名、作者至少2个字符
	CreateBook(ctx context.Context, isbn, title, author string, price int64) (*Book, error)

	GetBook(ctx context.Context, id uint) (*Book, error)

	// UpdateBook 部分更新，修改ISBN时同样检查唯一性
	UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error)

	// DeleteBook 删除图书
	// 门店库存检查由应用层在同一事务内完成
	DeleteBook(ctx context.Context, id uint) error

	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, isbn, title, author string, price int64) (*Book, error) {
	if !IsValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if len([]rune(strings.TrimSpace(title))) < 2 {
		return nil, ErrInvalidTitle
	}
	if len([]rune(strings.TrimSpace(author))) < 2 {
		return nil, ErrInvalidAuthor
	}

	if err := s.ensureISBNFree(ctx, isbn, 0); err != nil {
		return nil, err
	}

	b := NewBook(isbn, title, author, price)
	// 并发创建时唯一索引兜底，Repository会把重复键错误转换为ErrISBNDuplicate
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ISBN != nil && NormalizeISBN(*patch.ISBN) != b.ISBN {
		if !IsValidISBN(*patch.ISBN) {
			return nil, ErrInvalidISBN
		}
		if err := s.ensureISBNFree(ctx, *patch.ISBN, id); err != nil {
			return nil, err
		}
	}

	if err := b.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// ensureISBNFree ISBN未被其他图书占用（exceptID为当前图书自身）
func (s *service) ensureISBNFree(ctx context.Context, isbn string, exceptID uint) error {
	existing, err := s.repo.FindByISBN(ctx, NormalizeISBN(isbn))
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != exceptID {
		return ErrISBNDuplicate
	}
	return nil
}
