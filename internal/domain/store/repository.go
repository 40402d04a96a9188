package store

import "context"

// Repository 书店仓储接口
type Repository interface {
	Create(ctx context.Context, s *Store) error

	// FindByID 不存在时返回ErrStoreNotFound
	FindByID(ctx context.Context, id uint) (*Store, error)

	// FindByName 不存在时返回ErrStoreNotFound
	FindByName(ctx context.Context, name string) (*Store, error)

	// Exists 供库存账本的目录查询使用，在事务内调用时走同一事务
	Exists(ctx context.Context, id uint) (bool, error)

	Update(ctx context.Context, s *Store) error

	// List 按ID升序分页
	List(ctx context.Context, page, pageSize int) ([]*Store, int64, error)
}
