package dto

// RegisterRequest HTTP层注册请求
// 说明：只有管理员能创建账号，角色为空时是普通用户
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"manager@bookstore.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"Passw0rd123"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN STORE_MANAGER USER" example:"STORE_MANAGER"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@bookstore.com"`
	Password string `json:"password" binding:"required" example:"Admin123456"`
}

// RefreshRequest 刷新Access Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse 用户响应（不包含密码）
type UserResponse struct {
	ID    uint   `json:"id" example:"2"`
	Email string `json:"email" example:"manager@bookstore.com"`
	Role  string `json:"role" example:"STORE_MANAGER"`
}
