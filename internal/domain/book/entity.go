package book

import (
	"strings"
	"time"
)

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. 图书独立于书店存在，书店持有多少本由库存账本（inventory）记录
// 2. 价格使用int64存储"分"（避免浮点数精度问题）
// 3. ISBN存储去掉分隔符后的规范形式，数据库唯一索引保证唯一性
type Book struct {
	ID        uint
	ISBN      string
	Title     string
	Author    string
	Price     int64 // 价格（单位：分）
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建新图书（工厂方法）
// 调用方需先通过ValidateISBN/ValidatePrice校验
func NewBook(isbn, title, author string, price int64) *Book {
	now := time.Now()
	return &Book{
		ISBN:      NormalizeISBN(isbn),
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch 部分更新参数，nil字段保持不变
type Patch struct {
	ISBN   *string
	Title  *string
	Author *string
	Price  *int64
}

// Apply 应用部分更新（领域行为）
// 只做赋值，唯一性由Service检查
func (b *Book) Apply(p Patch) error {
	if p.ISBN != nil {
		if !IsValidISBN(*p.ISBN) {
			return ErrInvalidISBN
		}
		b.ISBN = NormalizeISBN(*p.ISBN)
	}
	if p.Title != nil {
		if len([]rune(strings.TrimSpace(*p.Title))) < 2 {
			return ErrInvalidTitle
		}
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		if len([]rune(strings.TrimSpace(*p.Author))) < 2 {
			return ErrInvalidAuthor
		}
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Price != nil {
		if err := ValidatePrice(*p.Price); err != nil {
			return err
		}
		b.Price = *p.Price
	}
	b.UpdatedAt = time.Now()
	return nil
}

// NormalizeISBN 去掉空格和连字符（978-0-13-235088-4 → 9780132350884）
func NormalizeISBN(isbn string) string {
	var sb strings.Builder
	for _, r := range isbn {
		if r == '-' || r == ' ' {
			continue
		}
		if r == 'x' {
			r = 'X'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// IsValidISBN 校验ISBN格式
// ISBN-10: 9位数字+校验位（数字或X）
// ISBN-13: 13位数字
// 学习要点：只校验格式，不计算校验和（与导入的历史数据兼容）
func IsValidISBN(isbn string) bool {
	clean := NormalizeISBN(isbn)
	switch len(clean) {
	case 13:
		return allDigits(clean)
	case 10:
		last := clean[9]
		return allDigits(clean[:9]) && (last == 'X' || (last >= '0' && last <= '9'))
	default:
		return false
	}
}

// ValidatePrice 价格必须为正
func ValidatePrice(price int64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
