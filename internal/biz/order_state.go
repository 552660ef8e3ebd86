package biz

import (
	tradeErrors "campus-trade/internal/errors"
)

// 订单状态枚举（与 orders.status 列值一致）
const (
	OrderStatusPending    = 1 // 待确认
	OrderStatusInProgress = 2 // 进行中
	OrderStatusCompleted  = 3 // 已完成（终态）
	OrderStatusCancelled  = 4 // 已取消（终态）
)

// 商品状态枚举（与 products.status 列值一致）
const (
	ProductStatusDeleted   = 0 // 已删除
	ProductStatusAvailable = 1 // 可售
	ProductStatusReserved  = 2 // 已预订
	ProductStatusSold      = 3 // 已售出
)

// Party 订单参与方
type Party int

const (
	PartyNone   Party = iota // 非订单参与方
	PartyBuyer               // 买家
	PartySeller              // 卖家
)

// orderStatusText 状态文案映射，仅用于展示，不参与业务判断
var orderStatusText = map[int]string{
	OrderStatusPending:    "pending confirmation",
	OrderStatusInProgress: "in progress",
	OrderStatusCompleted:  "completed",
	OrderStatusCancelled:  "cancelled",
}

// OrderStatusText 返回订单状态文案
func OrderStatusText(status int) string {
	if text, ok := orderStatusText[status]; ok {
		return text
	}
	return "unknown"
}

// IsTerminalStatus 判断是否终态（已完成 / 已取消）
func IsTerminalStatus(status int) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// PartyOf 判断 userID 在订单中的角色
func (o *Order) PartyOf(userID int64) Party {
	switch userID {
	case o.BuyerID:
		return PartyBuyer
	case o.SellerID:
		return PartySeller
	default:
		return PartyNone
	}
}

// ApplyConfirm 对订单应用一方确认。
// completed 表示本次确认使订单进入已完成；changed 表示本次调用是否改变了订单。
// 幂等：同一方重复确认、对已完成订单的再次确认均为无副作用的 no-op（changed 为 false）。
// 调用方必须已校验 party 与订单买卖双方的对应关系。
func ApplyConfirm(o *Order, party Party) (completed, changed bool, err error) {
	if o.Status == OrderStatusCancelled {
		return false, false, tradeErrors.NewOrderCancelled()
	}
	if o.Status == OrderStatusCompleted {
		// 双方已确认过，保持终态不动
		return false, false, nil
	}

	switch party {
	case PartyBuyer:
		if o.BuyerConfirm {
			return false, false, nil
		}
		o.BuyerConfirm = true
	case PartySeller:
		if o.SellerConfirm {
			return false, false, nil
		}
		o.SellerConfirm = true
	default:
		return false, false, tradeErrors.NewOrderUnauthorized()
	}

	if o.BuyerConfirm && o.SellerConfirm {
		o.Status = OrderStatusCompleted
		return true, true, nil
	}
	o.Status = OrderStatusInProgress
	return false, true, nil
}

// ApplyCancel 校验并应用订单取消。终态订单不可取消。
func ApplyCancel(o *Order) error {
	if IsTerminalStatus(o.Status) {
		return tradeErrors.NewInvalidStateTransition()
	}
	o.Status = OrderStatusCancelled
	return nil
}
