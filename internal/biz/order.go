package biz

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"campus-trade/internal/constants"
	tradeErrors "campus-trade/internal/errors"
	"campus-trade/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Order 订单领域对象
type Order struct {
	ID            int64     // 订单ID
	OrderNo       string    // 订单号（全局唯一，创建后不可变）
	BuyerID       int64     // 买家ID
	SellerID      int64     // 卖家ID（创建时取自商品归属，之后冻结）
	ProductID     int64     // 商品ID
	Amount        float64   // 成交金额（买家填写，仅作参考）
	Status        int       // 订单状态
	BuyerConfirm  bool      // 买家是否已确认
	SellerConfirm bool      // 卖家是否已确认
	Remark        string    // 备注
	CreateTime    time.Time // 创建时间
	UpdateTime    time.Time // 更新时间
}

// OrderStats 用户订单统计
type OrderStats struct {
	Pending    int64 // 待确认
	Processing int64 // 进行中
	Completed  int64 // 已完成
	Cancelled  int64 // 已取消
	AsBuyer    int64 // 作为买家的订单数
	AsSeller   int64 // 作为卖家的订单数
	Total      int64 // 总订单数
}

// OrderRepo 订单查询数据层接口（定义在 biz 层）
// 查询方法在订单不存在时返回 (nil, nil)。
type OrderRepo interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByNo(ctx context.Context, orderNo string) (*Order, error)
	ListBuyerOrders(ctx context.Context, buyerID int64) ([]*Order, error)
	ListSellerOrders(ctx context.Context, sellerID int64) ([]*Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]*Order, error)
	ListUserOrdersByStatus(ctx context.Context, userID int64, status int) ([]*Order, error)
	GetUserOrderStats(ctx context.Context, userID int64) (*OrderStats, error)
	PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TradeRepo 交易事务数据层接口（定义在 biz 层）
// 每个方法是一个工作单元：订单与商品的读改写在同一数据库事务内完成，
// 状态前置条件在行锁之下重新校验，拒绝时不留下任何部分写入。
type TradeRepo interface {
	// CreateOrderReserving 落库新订单并把商品置为已预订。
	// 在事务内对商品行加锁后重新校验可售状态、归属与自买限制，
	// 并以锁下读到的商品归属冻结 SellerID。返回预订后的商品快照。
	CreateOrderReserving(ctx context.Context, order *Order) (*Product, error)

	// ConfirmOrder 以 party 身份确认订单。callerID 在锁下重新校验。
	// 双方确认齐全时订单进入已完成并把商品置为已售出。
	// 返回确认后的订单、被更新的商品（未触及商品时为 nil，包括商品已被独立删除的完成流转），
	// 以及本次调用是否改变了订单（重复确认为 no-op）。
	ConfirmOrder(ctx context.Context, orderID, callerID int64, party Party) (*Order, *Product, bool, error)

	// CancelOrder 取消订单并恢复商品可售（商品已被独立删除时跳过商品侧更新）。
	// 返回取消后的订单，以及被更新的商品（未触及商品时为 nil）。
	CancelOrder(ctx context.Context, orderID, callerID int64) (*Order, *Product, error)
}

// OrderUseCase 订单生命周期业务逻辑
// 持有各 store 接口的显式注入引用，自身不保存可变状态。
type OrderUseCase struct {
	tradeRepo   TradeRepo
	orderRepo   OrderRepo
	productRepo ProductRepo
	userRepo    UserRepo
	invalidator *CacheInvalidator
	sink        NotificationSink
	conf        *TradeConfig
	log         *log.Helper
	metrics     *metrics.TradeMetrics
}

// NewOrderUseCase 创建订单 UseCase
func NewOrderUseCase(
	tradeRepo TradeRepo,
	orderRepo OrderRepo,
	productRepo ProductRepo,
	userRepo UserRepo,
	invalidator *CacheInvalidator,
	sink NotificationSink,
	conf *TradeConfig,
	logger log.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		tradeRepo:   tradeRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		invalidator: invalidator,
		sink:        sink,
		conf:        conf,
		log:         log.NewHelper(logger),
		metrics:     metrics.GetMetrics(),
	}
}

// CreateOrder 创建订单：校验商品可售、禁止自买、校验买家存在，
// 然后在一个事务内落库订单并预订商品。
// 订单号由时间戳 + 随机后缀生成，唯一索引冲突时重新生成（有限次）。
func (uc *OrderUseCase) CreateOrder(ctx context.Context, productID, buyerID int64, amount float64, remark string) (*Order, error) {
	startTime := time.Now()

	// 前置快速校验（权威校验在事务内的行锁之下再做一次）
	product, err := uc.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status == ProductStatusDeleted {
		return nil, tradeErrors.NewProductNotFound()
	}
	if product.Status != ProductStatusAvailable {
		return nil, tradeErrors.NewProductUnavailable()
	}
	if product.UserID == buyerID {
		return nil, tradeErrors.NewSelfTradeForbidden()
	}

	buyer, err := uc.userRepo.GetUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, tradeErrors.NewUserNotFound()
	}

	var reserved *Product
	order := &Order{
		BuyerID:   buyerID,
		ProductID: productID,
		Amount:    amount,
		Remark:    remark,
		Status:    OrderStatusPending,
	}
	for attempt := 0; attempt < uc.conf.OrderNoMaxRetry; attempt++ {
		order.OrderNo = generateOrderNo()
		reserved, err = uc.tradeRepo.CreateOrderReserving(ctx, order)
		if err == nil {
			break
		}
		if tradeErrors.IsDuplicateOrderNo(err) {
			uc.log.Warnf("order no collision, regenerating: order_no=%s, attempt=%d", order.OrderNo, attempt+1)
			continue
		}
		break
	}
	if err != nil {
		uc.log.Errorf("CreateOrder failed: product_id=%d, buyer_id=%d, error=%v", productID, buyerID, err)
		if uc.metrics != nil {
			uc.metrics.OrderCreateTotal.WithLabelValues(constants.ResultFailed).Inc()
			uc.metrics.OrderCreateDuration.Observe(time.Since(startTime).Seconds())
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrderCreateTotal.WithLabelValues(constants.ResultSuccess).Inc()
		uc.metrics.OrderCreateDuration.Observe(time.Since(startTime).Seconds())
	}
	uc.log.Infof("order created: order_no=%s, product_id=%d, buyer_id=%d, seller_id=%d",
		order.OrderNo, productID, buyerID, order.SellerID)

	// 事务已提交，缓存失效与通知均为尽力而为
	uc.invalidator.EvictProduct(reserved.ID, reserved.CategoryID, reserved.UserID)
	uc.publishOrderEvent(ctx, OrderEventCreated, order)

	return order, nil
}

// ConfirmOrderByBuyer 买家确认订单
func (uc *OrderUseCase) ConfirmOrderByBuyer(ctx context.Context, orderID, buyerID int64) error {
	return uc.confirmOrder(ctx, orderID, buyerID, PartyBuyer)
}

// ConfirmOrderBySeller 卖家确认订单
func (uc *OrderUseCase) ConfirmOrderBySeller(ctx context.Context, orderID, sellerID int64) error {
	return uc.confirmOrder(ctx, orderID, sellerID, PartySeller)
}

func (uc *OrderUseCase) confirmOrder(ctx context.Context, orderID, callerID int64, party Party) error {
	partyLabel := constants.PartyLabelBuyer
	if party == PartySeller {
		partyLabel = constants.PartyLabelSeller
	}

	order, product, changed, err := uc.tradeRepo.ConfirmOrder(ctx, orderID, callerID, party)
	if err != nil {
		uc.log.Errorf("ConfirmOrder failed: order_id=%d, caller_id=%d, party=%s, error=%v",
			orderID, callerID, partyLabel, err)
		if uc.metrics != nil {
			uc.metrics.OrderConfirmTotal.WithLabelValues(partyLabel, constants.ResultFailed).Inc()
		}
		return err
	}

	if uc.metrics != nil {
		uc.metrics.OrderConfirmTotal.WithLabelValues(partyLabel, constants.ResultSuccess).Inc()
	}

	// 重复确认是 no-op，不重复发布事件
	if !changed {
		return nil
	}

	if order.Status == OrderStatusCompleted {
		// 本次确认促成了完成流转；商品已被独立删除时 product 为 nil，只跳过缓存失效
		if uc.metrics != nil {
			uc.metrics.OrderCompletedTotal.Inc()
		}
		uc.log.Infof("order completed: order_no=%s, product_id=%d", order.OrderNo, order.ProductID)
		if product != nil {
			uc.invalidator.EvictProduct(product.ID, product.CategoryID, product.UserID)
		}
		uc.publishOrderEvent(ctx, OrderEventCompleted, order)
		return nil
	}

	uc.publishOrderEvent(ctx, OrderEventConfirmed, order)
	return nil
}

// CancelOrder 取消订单：订单进入已取消，商品恢复可售（已删除的商品除外）。
func (uc *OrderUseCase) CancelOrder(ctx context.Context, orderID, callerID int64) error {
	order, product, err := uc.tradeRepo.CancelOrder(ctx, orderID, callerID)
	if err != nil {
		uc.log.Errorf("CancelOrder failed: order_id=%d, caller_id=%d, error=%v", orderID, callerID, err)
		if uc.metrics != nil {
			uc.metrics.OrderCancelTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		return err
	}

	if uc.metrics != nil {
		uc.metrics.OrderCancelTotal.WithLabelValues(constants.ResultSuccess).Inc()
	}
	uc.log.Infof("order cancelled: order_no=%s, product_id=%d", order.OrderNo, order.ProductID)

	if product != nil {
		uc.invalidator.EvictProduct(product.ID, product.CategoryID, product.UserID)
	}
	uc.publishOrderEvent(ctx, OrderEventCancelled, order)
	return nil
}

// GetOrderDetail 获取订单详情，仅买卖双方可见
func (uc *OrderUseCase) GetOrderDetail(ctx context.Context, orderID, userID int64) (*Order, error) {
	order, err := uc.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, tradeErrors.NewOrderNotFound()
	}
	if order.PartyOf(userID) == PartyNone {
		return nil, tradeErrors.NewOrderUnauthorized()
	}
	return order, nil
}

// GetOrderByOrderNo 根据订单号获取订单详情，仅买卖双方可见
func (uc *OrderUseCase) GetOrderByOrderNo(ctx context.Context, orderNo string, userID int64) (*Order, error) {
	order, err := uc.orderRepo.GetOrderByNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, tradeErrors.NewOrderNotFound()
	}
	if order.PartyOf(userID) == PartyNone {
		return nil, tradeErrors.NewOrderUnauthorized()
	}
	return order, nil
}

// ListBuyerOrders 获取用户作为买家的订单列表
func (uc *OrderUseCase) ListBuyerOrders(ctx context.Context, buyerID int64) ([]*Order, error) {
	return uc.orderRepo.ListBuyerOrders(ctx, buyerID)
}

// ListSellerOrders 获取用户作为卖家的订单列表
func (uc *OrderUseCase) ListSellerOrders(ctx context.Context, sellerID int64) ([]*Order, error) {
	return uc.orderRepo.ListSellerOrders(ctx, sellerID)
}

// ListUserOrders 获取用户的全部订单列表（买家 + 卖家）
func (uc *OrderUseCase) ListUserOrders(ctx context.Context, userID int64) ([]*Order, error) {
	return uc.orderRepo.ListUserOrders(ctx, userID)
}

// ListUserOrdersByStatus 按状态获取用户订单列表
func (uc *OrderUseCase) ListUserOrdersByStatus(ctx context.Context, userID int64, status int) ([]*Order, error) {
	return uc.orderRepo.ListUserOrdersByStatus(ctx, userID, status)
}

// GetUserOrderStats 获取用户订单统计
func (uc *OrderUseCase) GetUserOrderStats(ctx context.Context, userID int64) (*OrderStats, error) {
	return uc.orderRepo.GetUserOrderStats(ctx, userID)
}

// PurgeCancelledOrders 清理超出保留期的已取消订单（定时任务调用）
func (uc *OrderUseCase) PurgeCancelledOrders(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-uc.conf.CancelledRetention)
	n, err := uc.orderRepo.PurgeCancelledBefore(ctx, cutoff)
	if err != nil {
		uc.log.Errorf("PurgeCancelledOrders failed: cutoff=%s, error=%v", cutoff.Format(time.RFC3339), err)
		return 0, err
	}
	if n > 0 && uc.metrics != nil {
		uc.metrics.OrderPurgedTotal.Add(float64(n))
	}
	uc.log.Infof("purged cancelled orders: cutoff=%s, count=%d", cutoff.Format(time.RFC3339), n)
	return n, nil
}

// publishOrderEvent 发布订单事件，失败只记录日志
func (uc *OrderUseCase) publishOrderEvent(ctx context.Context, eventType string, order *Order) {
	if uc.sink == nil {
		return
	}
	event := &OrderEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID,
		OrderNo:   order.OrderNo,
		ProductID: order.ProductID,
		BuyerID:   order.BuyerID,
		SellerID:  order.SellerID,
		OccurTime: time.Now(),
	}
	if err := uc.sink.PublishOrderEvent(ctx, event); err != nil {
		uc.log.Warnf("failed to publish order event: type=%s, order_no=%s, error=%v",
			eventType, order.OrderNo, err)
		if uc.metrics != nil {
			uc.metrics.NotifyPublishTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		return
	}
	if uc.metrics != nil {
		uc.metrics.NotifyPublishTotal.WithLabelValues(constants.ResultSuccess).Inc()
	}
}

// generateOrderNo 生成订单号：前缀 + 时间戳 + 4位随机数。
// 碰撞概率极低，但落库时仍由唯一索引兜底，冲突由调用方重试。
func generateOrderNo() string {
	return fmt.Sprintf("%s%s%04d",
		constants.OrderNoPrefix,
		time.Now().Format(constants.OrderNoTimeFormat),
		rand.Intn(10000))
}
