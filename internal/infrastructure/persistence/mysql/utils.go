package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为唯一索引冲突
// 开启TranslateError后MySQL（1062）和SQLite都会转换为gorm.ErrDuplicatedKey，
// 字符串匹配用于兼容未翻译的驱动错误
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// isForeignKeyError 判断是否为外键约束冲突
// MySQL 1451（删除被引用的父行）、1452（插入引用不存在的父行）；SQLite为FOREIGN KEY constraint failed
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "a foreign key constraint fails") || strings.Contains(msg, "FOREIGN KEY constraint failed")
}

// normalizePage 分页参数默认值：page从1开始，pageSize默认20、最大100
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
