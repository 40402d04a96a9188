package dto

import "fmt"

// CreateBookRequest HTTP创建图书请求
// validator tag说明：
// - required: 必填字段
// - min/max: 数值范围、长度校验
// ISBN格式和唯一性由领域服务校验
type CreateBookRequest struct {
	ISBN   string `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title  string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Price  int64  `json:"price" binding:"required,min=1,max=999999" example:"5900"` // 价格（分），59.00元
}

// UpdateBookRequest HTTP更新图书请求，未传的字段保持不变
type UpdateBookRequest struct {
	ISBN   *string `json:"isbn" binding:"omitempty,max=20" example:"9787115428028"`
	Title  *string `json:"title" binding:"omitempty,max=200" example:"Go语言实战(第2版)"`
	Author *string `json:"author" binding:"omitempty,max=100" example:"威廉·肯尼迪"`
	Price  *int64  `json:"price" binding:"omitempty,min=1,max=999999" example:"6900"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID        uint   `json:"id" example:"1"`
	ISBN      string `json:"isbn" example:"9787115428028"`
	Title     string `json:"title" example:"Go语言实战"`
	Author    string `json:"author" example:"威廉·肯尼迪"`
	Price     int64  `json:"price" example:"5900"`       // 价格（分）
	PriceYuan string `json:"price_yuan" example:"59.00"` // 价格（元），方便前端显示
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc title_asc created_at_desc" example:"created_at_desc"`
}

// FormatPriceYuan 格式化价格（分→元）
// 例如：5900分 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	return fmt.Sprintf("%d.%02d", priceFen/100, priceFen%100)
}
