package store

import (
	"strings"
	"time"
)

// Store 书店实体
// 书店只描述门店本身，门店持有的图书数量在inventory聚合中
type Store struct {
	ID        uint
	Name      string // 全局唯一
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 字段长度下限
const (
	minNameLen    = 2
	minAddressLen = 5
)

// NewStore 创建书店（工厂方法），同时校验名称和地址
func NewStore(name, address string) (*Store, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Store{
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Patch 部分更新参数，nil字段保持不变
type Patch struct {
	Name    *string
	Address *string
}

// Apply 应用部分更新
func (s *Store) Apply(p Patch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateName(name); err != nil {
			return err
		}
		s.Name = name
	}
	if p.Address != nil {
		address := strings.TrimSpace(*p.Address)
		if err := validateAddress(address); err != nil {
			return err
		}
		s.Address = address
	}
	s.UpdatedAt = time.Now()
	return nil
}

func validateName(name string) error {
	if len([]rune(name)) < minNameLen {
		return ErrInvalidName
	}
	return nil
}

func validateAddress(address string) error {
	if len([]rune(address)) < minAddressLen {
		return ErrInvalidAddress
	}
	return nil
}
