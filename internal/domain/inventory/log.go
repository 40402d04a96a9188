package inventory

import "time"

// ChangeLog 库存变更日志
// 每次成功的增减都在同一事务内写一条，记录变更前后数量和操作人
type ChangeLog struct {
	ID         uint
	StoreID    uint
	BookID     uint
	ChangeType ChangeType
	Delta      int // 正数=增加，负数=减少
	Before     int
	After      int
	OperatorID uint // 0表示系统操作
	CreatedAt  time.Time
}

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeRestock ChangeType = "RESTOCK" // 增加
	ChangeTypeRemove  ChangeType = "REMOVE"  // 部分取出
	ChangeTypeDeplete ChangeType = "DEPLETE" // 取空，记录被删除
)

// NewRestockLog 创建增加日志
func NewRestockLog(key Key, quantity, before int, operatorID uint) *ChangeLog {
	return newLog(key, ChangeTypeRestock, quantity, before, operatorID)
}

// NewRemoveLog 创建扣减日志，扣减到0时类型为DEPLETE
func NewRemoveLog(key Key, quantity, before int, operatorID uint) *ChangeLog {
	changeType := ChangeTypeRemove
	if before == quantity {
		changeType = ChangeTypeDeplete
	}
	return newLog(key, changeType, -quantity, before, operatorID)
}

func newLog(key Key, changeType ChangeType, delta, before int, operatorID uint) *ChangeLog {
	return &ChangeLog{
		StoreID:    key.StoreID,
		BookID:     key.BookID,
		ChangeType: changeType,
		Delta:      delta,
		Before:     before,
		After:      before + delta,
		OperatorID: operatorID,
		CreatedAt:  time.Now(),
	}
}
