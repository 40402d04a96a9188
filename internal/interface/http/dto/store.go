package dto

// CreateStoreRequest HTTP创建书店请求
type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required,max=100" example:"中关村店"`
	Address string `json:"address" binding:"required,max=255" example:"北京市海淀区中关村大街1号"`
}

// UpdateStoreRequest HTTP更新书店请求，未传的字段保持不变
type UpdateStoreRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100" example:"中关村旗舰店"`
	Address *string `json:"address" binding:"omitempty,max=255" example:"北京市海淀区中关村大街2号"`
}

// PageRequest 通用分页参数
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
