package data

import (
	"context"
	"errors"
	"time"

	"campus-trade/internal/biz"
	"campus-trade/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// orderRepo biz.OrderRepo 的实现（订单读路径与保留期清理）
type orderRepo struct {
	data *Data
	log  *log.Helper
}

// NewOrderRepo 创建订单数据层
func NewOrderRepo(data *Data, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// toBizOrder 模型转领域对象（确认位 INT -> bool）
func toBizOrder(m *model.Order) *biz.Order {
	return &biz.Order{
		ID:            m.ID,
		OrderNo:       m.OrderNo,
		BuyerID:       m.BuyerID,
		SellerID:      m.SellerID,
		ProductID:     m.ProductID,
		Amount:        m.Amount,
		Status:        m.Status,
		BuyerConfirm:  m.BuyerConfirm == 1,
		SellerConfirm: m.SellerConfirm == 1,
		Remark:        m.Remark,
		CreateTime:    m.CreateTime,
		UpdateTime:    m.UpdateTime,
	}
}

func toBizOrders(ms []*model.Order) []*biz.Order {
	orders := make([]*biz.Order, 0, len(ms))
	for _, m := range ms {
		orders = append(orders, toBizOrder(m))
	}
	return orders
}

// GetOrder 根据ID获取订单，不存在时返回 (nil, nil)
func (r *orderRepo) GetOrder(ctx context.Context, id int64) (*biz.Order, error) {
	var m model.Order
	err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toBizOrder(&m), nil
}

// GetOrderByNo 根据订单号获取订单，不存在时返回 (nil, nil)
func (r *orderRepo) GetOrderByNo(ctx context.Context, orderNo string) (*biz.Order, error) {
	var m model.Order
	err := r.data.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toBizOrder(&m), nil
}

// ListBuyerOrders 获取用户作为买家的订单列表
func (r *orderRepo) ListBuyerOrders(ctx context.Context, buyerID int64) ([]*biz.Order, error) {
	var ms []*model.Order
	err := r.data.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("create_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toBizOrders(ms), nil
}

// ListSellerOrders 获取用户作为卖家的订单列表
func (r *orderRepo) ListSellerOrders(ctx context.Context, sellerID int64) ([]*biz.Order, error) {
	var ms []*model.Order
	err := r.data.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("create_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toBizOrders(ms), nil
}

// ListUserOrders 获取用户的全部订单（买家或卖家）
func (r *orderRepo) ListUserOrders(ctx context.Context, userID int64) ([]*biz.Order, error) {
	var ms []*model.Order
	err := r.data.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("create_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toBizOrders(ms), nil
}

// ListUserOrdersByStatus 按状态获取用户订单
func (r *orderRepo) ListUserOrdersByStatus(ctx context.Context, userID int64, status int) ([]*biz.Order, error) {
	var ms []*model.Order
	err := r.data.db.WithContext(ctx).
		Where("(buyer_id = ? OR seller_id = ?) AND status = ?", userID, userID, status).
		Order("create_time DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toBizOrders(ms), nil
}

// GetUserOrderStats 获取用户订单统计
func (r *orderRepo) GetUserOrderStats(ctx context.Context, userID int64) (*biz.OrderStats, error) {
	type statusCount struct {
		Status int
		Count  int64
	}
	var counts []statusCount
	err := r.data.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := &biz.OrderStats{}
	for _, c := range counts {
		switch c.Status {
		case model.OrderStatusPending:
			stats.Pending = c.Count
		case model.OrderStatusInProgress:
			stats.Processing = c.Count
		case model.OrderStatusCompleted:
			stats.Completed = c.Count
		case model.OrderStatusCancelled:
			stats.Cancelled = c.Count
		}
		stats.Total += c.Count
	}

	err = r.data.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("buyer_id = ?", userID).
		Count(&stats.AsBuyer).Error
	if err != nil {
		return nil, err
	}
	err = r.data.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("seller_id = ?", userID).
		Count(&stats.AsSeller).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// PurgeCancelledBefore 删除创建时间早于 cutoff 的已取消订单，返回删除行数
func (r *orderRepo) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.data.db.WithContext(ctx).
		Where("status = ? AND create_time < ?", model.OrderStatusCancelled, cutoff).
		Delete(&model.Order{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
