package service

import (
	"context"
	"time"

	"campus-trade/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// TradeService 交易服务（订单生命周期）
type TradeService struct {
	orderUc *biz.OrderUseCase
	log     *log.Helper
}

// NewTradeService 创建交易服务
func NewTradeService(orderUc *biz.OrderUseCase, logger log.Logger) *TradeService {
	return &TradeService{
		orderUc: orderUc,
		log:     log.NewHelper(logger),
	}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	ProductID int64   `json:"product_id"`
	Amount    float64 `json:"amount"`
	Remark    string  `json:"remark"`
}

// OrderReply 订单响应
type OrderReply struct {
	ID            int64   `json:"id"`
	OrderNo       string  `json:"order_no"`
	BuyerID       int64   `json:"buyer_id"`
	SellerID      int64   `json:"seller_id"`
	ProductID     int64   `json:"product_id"`
	Amount        float64 `json:"amount"`
	Status        int     `json:"status"`
	StatusText    string  `json:"status_text"`
	BuyerConfirm  bool    `json:"buyer_confirm"`
	SellerConfirm bool    `json:"seller_confirm"`
	Remark        string  `json:"remark,omitempty"`
	CreateTime    string  `json:"create_time"`
	UpdateTime    string  `json:"update_time"`
}

// OrderListReply 订单列表响应
type OrderListReply struct {
	Items []*OrderReply `json:"items"`
}

// OrderStatsReply 用户订单统计响应
type OrderStatsReply struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	AsBuyer    int64 `json:"as_buyer"`
	AsSeller   int64 `json:"as_seller"`
	Total      int64 `json:"total"`
}

func toOrderReply(o *biz.Order) *OrderReply {
	return &OrderReply{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		BuyerID:       o.BuyerID,
		SellerID:      o.SellerID,
		ProductID:     o.ProductID,
		Amount:        o.Amount,
		Status:        o.Status,
		StatusText:    biz.OrderStatusText(o.Status),
		BuyerConfirm:  o.BuyerConfirm,
		SellerConfirm: o.SellerConfirm,
		Remark:        o.Remark,
		CreateTime:    o.CreateTime.Format(time.RFC3339),
		UpdateTime:    o.UpdateTime.Format(time.RFC3339),
	}
}

func toOrderListReply(orders []*biz.Order) *OrderListReply {
	items := make([]*OrderReply, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderReply(o))
	}
	return &OrderListReply{Items: items}
}

// CreateOrder 创建订单
func (s *TradeService) CreateOrder(ctx context.Context, buyerID int64, req *CreateOrderRequest) (*OrderReply, error) {
	order, err := s.orderUc.CreateOrder(ctx, req.ProductID, buyerID, req.Amount, req.Remark)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// ConfirmOrderByBuyer 买家确认订单
func (s *TradeService) ConfirmOrderByBuyer(ctx context.Context, orderID, buyerID int64) error {
	return s.orderUc.ConfirmOrderByBuyer(ctx, orderID, buyerID)
}

// ConfirmOrderBySeller 卖家确认订单
func (s *TradeService) ConfirmOrderBySeller(ctx context.Context, orderID, sellerID int64) error {
	return s.orderUc.ConfirmOrderBySeller(ctx, orderID, sellerID)
}

// CancelOrder 取消订单
func (s *TradeService) CancelOrder(ctx context.Context, orderID, callerID int64) error {
	return s.orderUc.CancelOrder(ctx, orderID, callerID)
}

// GetOrderDetail 获取订单详情
func (s *TradeService) GetOrderDetail(ctx context.Context, orderID, userID int64) (*OrderReply, error) {
	order, err := s.orderUc.GetOrderDetail(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// GetOrderByOrderNo 根据订单号获取订单详情
func (s *TradeService) GetOrderByOrderNo(ctx context.Context, orderNo string, userID int64) (*OrderReply, error) {
	order, err := s.orderUc.GetOrderByOrderNo(ctx, orderNo, userID)
	if err != nil {
		return nil, err
	}
	return toOrderReply(order), nil
}

// ListOrders 获取用户订单列表。
// listType 取 buyer / seller / all（默认 all）；status > 0 时按状态过滤。
func (s *TradeService) ListOrders(ctx context.Context, userID int64, listType string, status int) (*OrderListReply, error) {
	var (
		orders []*biz.Order
		err    error
	)
	switch {
	case status > 0:
		orders, err = s.orderUc.ListUserOrdersByStatus(ctx, userID, status)
	case listType == "buyer":
		orders, err = s.orderUc.ListBuyerOrders(ctx, userID)
	case listType == "seller":
		orders, err = s.orderUc.ListSellerOrders(ctx, userID)
	default:
		orders, err = s.orderUc.ListUserOrders(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return toOrderListReply(orders), nil
}

// GetOrderStats 获取用户订单统计
func (s *TradeService) GetOrderStats(ctx context.Context, userID int64) (*OrderStatsReply, error) {
	stats, err := s.orderUc.GetUserOrderStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &OrderStatsReply{
		Pending:    stats.Pending,
		Processing: stats.Processing,
		Completed:  stats.Completed,
		Cancelled:  stats.Cancelled,
		AsBuyer:    stats.AsBuyer,
		AsSeller:   stats.AsSeller,
		Total:      stats.Total,
	}, nil
}
