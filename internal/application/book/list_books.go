package book

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 支持分页、关键词搜索（标题、作者、ISBN）、排序
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string
	SortBy   string // price_asc | price_desc | title_asc | created_at_desc
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []*BookResponse `json:"list"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Execute 执行列表查询
// 学习要点：
// 1. 参数默认值处理（page默认1, pageSize默认20）
// 2. 参数范围限制（pageSize最大100）
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = toBookResponse(b)
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages(total, req.PageSize),
	}, nil
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
