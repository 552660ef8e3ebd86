package model

import (
	"time"
)

// 订单状态常量（orders.status 列为小整数枚举，列值约定不可变更）
const (
	OrderStatusPending    = 1 // 待确认
	OrderStatusInProgress = 2 // 进行中
	OrderStatusCompleted  = 3 // 已完成
	OrderStatusCancelled  = 4 // 已取消
)

// Order 订单表
// buyer_confirm / seller_confirm 按列约定存储为 INT (0/1)，领域层转换为 bool。
type Order struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	OrderNo       string    `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null"`
	BuyerID       int64     `gorm:"column:buyer_id;not null;index"`
	SellerID      int64     `gorm:"column:seller_id;not null;index"`
	ProductID     int64     `gorm:"column:product_id;not null;index"`
	Amount        float64   `gorm:"type:decimal(10,2);not null"`
	Status        int       `gorm:"not null;default:1;index"`
	BuyerConfirm  int       `gorm:"column:buyer_confirm;not null;default:0"`
	SellerConfirm int       `gorm:"column:seller_confirm;not null;default:0"`
	Remark        string    `gorm:"type:varchar(500)"`
	CreateTime    time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime    time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
