package store

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/store"
)

// UseCase 书店管理用例
// 书店只有增改查，没有删除：库存记录和变更日志都引用书店ID
type UseCase struct {
	storeService store.Service
}

// NewUseCase 创建书店用例
func NewUseCase(storeService store.Service) *UseCase {
	return &UseCase{storeService: storeService}
}

// StoreResponse 书店响应DTO
type StoreResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ListStoresResponse 分页结果
type ListStoresResponse struct {
	List     []*StoreResponse `json:"list"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// UpdateStoreRequest nil字段保持不变
type UpdateStoreRequest struct {
	Name    *string
	Address *string
}

func (uc *UseCase) Create(ctx context.Context, name, address string) (*StoreResponse, error) {
	st, err := uc.storeService.CreateStore(ctx, name, address)
	if err != nil {
		return nil, err
	}
	return toStoreResponse(st), nil
}

func (uc *UseCase) Get(ctx context.Context, id uint) (*StoreResponse, error) {
	st, err := uc.storeService.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStoreResponse(st), nil
}

func (uc *UseCase) Update(ctx context.Context, id uint, req UpdateStoreRequest) (*StoreResponse, error) {
	st, err := uc.storeService.UpdateStore(ctx, id, store.Patch{Name: req.Name, Address: req.Address})
	if err != nil {
		return nil, err
	}
	return toStoreResponse(st), nil
}

func (uc *UseCase) List(ctx context.Context, page, pageSize int) (*ListStoresResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	stores, total, err := uc.storeService.ListStores(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]*StoreResponse, len(stores))
	for i, st := range stores {
		list[i] = toStoreResponse(st)
	}
	return &ListStoresResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func toStoreResponse(st *store.Store) *StoreResponse {
	return &StoreResponse{
		ID:        st.ID,
		Name:      st.Name,
		Address:   st.Address,
		CreatedAt: st.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: st.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
