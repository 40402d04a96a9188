package dto

import (
	"time"

	"github.com/xiebiao/bookledger/internal/domain/inventory"
)

// StockChangeRequest 增加/取出库存请求
// 数量必须是正整数；0和负数在绑定阶段就会被拒绝
type StockChangeRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"5"`
}

// StockRecordResponse 库存记录
type StockRecordResponse struct {
	StoreID   uint   `json:"store_id" example:"1"`
	BookID    uint   `json:"book_id" example:"1"`
	Quantity  int    `json:"quantity" example:"8"`
	UpdatedAt string `json:"updated_at,omitempty" example:"2024-01-15 10:30:00"`
}

// QuantityResponse 数量查询结果
type QuantityResponse struct {
	StoreID  uint `json:"store_id" example:"1"`
	BookID   uint `json:"book_id" example:"1"`
	Quantity int  `json:"quantity" example:"8"`
}

// ChangeLogResponse 库存变更日志
type ChangeLogResponse struct {
	ID         uint   `json:"id" example:"12"`
	ChangeType string `json:"change_type" example:"REMOVE"`
	Delta      int    `json:"delta" example:"-2"`
	Before     int    `json:"before" example:"10"`
	After      int    `json:"after" example:"8"`
	OperatorID uint   `json:"operator_id" example:"3"`
	CreatedAt  string `json:"created_at" example:"2024-01-15 10:30:00"`
}

const timeLayout = "2006-01-02 15:04:05"

// NewStockRecordResponse rec为nil表示记录已取空，返回nil
// 注意：返回值是带类型的nil指针，response.Success会输出"data": null，
// 数量为0的记录永远不会出现在响应里
func NewStockRecordResponse(rec *inventory.Record) *StockRecordResponse {
	if rec == nil {
		return nil
	}
	return &StockRecordResponse{
		StoreID:   rec.StoreID,
		BookID:    rec.BookID,
		Quantity:  rec.Quantity,
		UpdatedAt: formatTime(rec.UpdatedAt),
	}
}

// NewStockRecordList 转换库存记录列表
func NewStockRecordList(records []*inventory.Record) []*StockRecordResponse {
	list := make([]*StockRecordResponse, len(records))
	for i, r := range records {
		list[i] = NewStockRecordResponse(r)
	}
	return list
}

// NewChangeLogList 转换变更日志列表
func NewChangeLogList(logs []*inventory.ChangeLog) []*ChangeLogResponse {
	list := make([]*ChangeLogResponse, len(logs))
	for i, l := range logs {
		list[i] = &ChangeLogResponse{
			ID:         l.ID,
			ChangeType: string(l.ChangeType),
			Delta:      l.Delta,
			Before:     l.Before,
			After:      l.After,
			OperatorID: l.OperatorID,
			CreatedAt:  formatTime(l.CreatedAt),
		}
	}
	return list
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
