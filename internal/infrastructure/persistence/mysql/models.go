package mysql

import (
	"time"
)

// 设计说明：
// 1. 这些是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM,Repository负责两者之间的转换
// 3. 不使用软删除：ISBN、书店名称、库存键都有唯一索引，软删除的行会占住唯一值

// UserModel 用户表
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Role      string    `gorm:"size:20;not null;default:USER;comment:角色"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel 图书表
type BookModel struct {
	ID        uint      `gorm:"primaryKey"`
	ISBN      string    `gorm:"uniqueIndex;size:20;not null;comment:ISBN号(无分隔符)"`
	Title     string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author    string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Price     int64     `gorm:"index:idx_list;not null;comment:价格(分)"`
	CreatedAt time.Time `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// StoreModel 书店表
type StoreModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:书店名称"`
	Address   string    `gorm:"size:255;not null;comment:地址"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (StoreModel) TableName() string {
	return "bookstores"
}

// InventoryModel 库存表
// 教学要点：
// 1. (store_id, book_id)联合主键，同时是upsert的冲突键
// 2. quantity恒>0：减到0的行在同一事务内删除
// 3. idx_book索引支撑"哪些书店持有这本书"的查询（删除图书前检查）
// 4. 外键RESTRICT：库存记录不能引用不存在的书店或图书。
//    应用层的"先查库存再删除"是非锁定读，和并发的增加库存交错时两边都会成功；
//    外键检查会加锁，由数据库保证删除图书和插入库存只有一个成功
type InventoryModel struct {
	StoreID   uint      `gorm:"primaryKey;autoIncrement:false;comment:书店ID"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false;index:idx_book;comment:图书ID"`
	Quantity  int       `gorm:"not null;comment:数量(>0)"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`

	Store StoreModel `gorm:"foreignKey:StoreID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Book  BookModel  `gorm:"foreignKey:BookID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (InventoryModel) TableName() string {
	return "bookstore_books"
}

// InventoryLogModel 库存变更日志表（只增不改）
type InventoryLogModel struct {
	ID         uint      `gorm:"primaryKey"`
	StoreID    uint      `gorm:"index:idx_key;not null"`
	BookID     uint      `gorm:"index:idx_key;not null"`
	ChangeType string    `gorm:"type:varchar(20);not null"`
	Delta      int       `gorm:"not null;comment:变更数量(正增负减)"`
	Before     int       `gorm:"column:before_quantity;not null"`
	After      int       `gorm:"column:after_quantity;not null"`
	OperatorID uint      `gorm:"index;comment:操作人用户ID"`
	CreatedAt  time.Time `gorm:"index"`
}

func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}
