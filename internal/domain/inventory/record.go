package inventory

import "time"

// Record 库存记录：某书店持有某图书的数量
//
// 设计说明：
// 1. (StoreID, BookID)唯一，数据库唯一索引保证
// 2. 记录存在时Quantity一定>0；数量减到0的同一事务内删除记录
// 3. 没有记录等价于数量为0，查询返回0而不是错误
type Record struct {
	StoreID   uint
	BookID    uint
	Quantity  int
	UpdatedAt time.Time
}

// Key 库存记录的业务主键
type Key struct {
	StoreID uint
	BookID  uint
}

// Key 返回记录的业务主键
func (r *Record) Key() Key {
	return Key{StoreID: r.StoreID, BookID: r.BookID}
}

// QuantityOf 记录为nil时返回0
func QuantityOf(r *Record) int {
	if r == nil {
		return 0
	}
	return r.Quantity
}

// ValidateQuantity 增减数量必须是正整数
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// CheckRemovable 校验能否从记录中取出quantity本
// 记录不存在按可用数量0处理
func CheckRemovable(r *Record, key Key, quantity int) error {
	available := QuantityOf(r)
	if available < quantity {
		return Insufficient(key, quantity, available)
	}
	return nil
}

// IsLowStock 数量不高于阈值（用于低库存告警）
func IsLowStock(quantity, threshold int) bool {
	return quantity <= threshold
}
