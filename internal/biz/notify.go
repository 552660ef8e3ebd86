package biz

import (
	"context"
	"time"
)

// 订单事件类型
const (
	// OrderEventCreated 订单已创建
	OrderEventCreated = "order.created"
	// OrderEventConfirmed 一方已确认
	OrderEventConfirmed = "order.confirmed"
	// OrderEventCompleted 订单已完成
	OrderEventCompleted = "order.completed"
	// OrderEventCancelled 订单已取消
	OrderEventCancelled = "order.cancelled"
)

// OrderEvent 订单事件
// 发往通知队列，由网关/WebSocket 层消费后推送给买卖双方。
type OrderEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	OrderID   int64     `json:"order_id"`
	OrderNo   string    `json:"order_no"`
	ProductID int64     `json:"product_id"`
	BuyerID   int64     `json:"buyer_id"`
	SellerID  int64     `json:"seller_id"`
	OccurTime time.Time `json:"occur_time"`
}

// NotificationSink 通知下沉接口（定义在 biz 层，data 层用 RocketMQ 实现）
// 发布是尽力而为的：失败由调用方记录日志后吞掉，绝不向上传播。
type NotificationSink interface {
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error
}
