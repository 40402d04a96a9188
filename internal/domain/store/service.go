package store

import (
	"context"
	"errors"
	"strings"
)

// Service 书店领域服务
// 业务规则：名称全局唯一（创建和改名时检查，数据库唯一索引兜底）
type Service interface {
	CreateStore(ctx context.Context, name, address string) (*Store, error)
	GetStore(ctx context.Context, id uint) (*Store, error)
	UpdateStore(ctx context.Context, id uint, patch Patch) (*Store, error)
	ListStores(ctx context.Context, page, pageSize int) ([]*Store, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建书店领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateStore(ctx context.Context, name, address string) (*Store, error) {
	st, err := NewStore(name, address)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, st.Name, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id uint) (*Store, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateStore(ctx context.Context, id uint, patch Patch) (*Store, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name != st.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
	}

	if err := st.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) ListStores(ctx context.Context, page, pageSize int) ([]*Store, int64, error) {
	return s.repo.List(ctx, page, pageSize)
}

func (s *service) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	existing, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, ErrStoreNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return ErrNameDuplicate.WithDetails(map[string]interface{}{"name": name})
	}
	return nil
}
