package model

import (
	"time"
)

// 商品状态常量（products.status 列为小整数枚举，列值约定不可变更）
const (
	ProductStatusDeleted   = 0 // 已删除
	ProductStatusAvailable = 1 // 可售
	ProductStatusReserved  = 2 // 已预订
	ProductStatusSold      = 3 // 已售出
)

// Product 商品表（只包含交易核心关心的列，商品发布/编辑由商品子系统维护）
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	CategoryID  int64     `gorm:"column:category_id;not null;index"`
	Title       string    `gorm:"type:varchar(100);not null"`
	Description string    `gorm:"type:text"`
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	Images      string    `gorm:"type:json"`
	ViewCount   int64     `gorm:"column:view_count;default:0"`
	Status      int       `gorm:"not null;default:1;index"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime  time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
