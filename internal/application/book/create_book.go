package book

import (
	"context"

	"github.com/xiebiao/bookledger/internal/domain/book"
)

// CreateBookUseCase 创建图书用例
// 设计说明：
// 1. 应用层负责用例编排，协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object)，与HTTP层解耦
// 3. 此用例比较简单，只需调用领域服务即可
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 创建请求DTO
type CreateBookRequest struct {
	ISBN   string
	Title  string
	Author string
	Price  int64 // 价格（分）
}

// BookResponse 图书响应DTO（创建、详情、更新共用）
type BookResponse struct {
	ID        uint   `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Price     int64  `json:"price"` // 价格（分）
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Execute 执行创建
// 业务规则校验（ISBN格式与唯一性、价格为正）由领域服务负责
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.CreateBook(ctx, req.ISBN, req.Title, req.Author, req.Price)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
