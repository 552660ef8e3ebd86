package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-trade/internal/biz"
	"campus-trade/internal/constants"
	"campus-trade/internal/data/model"
	tradeErrors "campus-trade/internal/errors"
	"campus-trade/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tradeRepo biz.TradeRepo 的实现
// 每个方法是一个工作单元：订单与商品的读改写在同一数据库事务内完成，
// 前置条件一律在 FOR UPDATE 行锁之下重新校验。
type tradeRepo struct {
	data    *Data
	conf    *biz.TradeConfig
	log     *log.Helper
	metrics *metrics.TradeMetrics
}

// NewTradeRepo 创建交易事务数据层
func NewTradeRepo(data *Data, conf *biz.TradeConfig, logger log.Logger) biz.TradeRepo {
	return &tradeRepo{
		data:    data,
		conf:    conf,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// lockProductMutex 获取商品分布式锁。
// 多实例部署时把同一商品的下单收敛到一个持锁者，缩短行锁等待；
// 正确性仍由事务内的行锁保证，Redis 锁只是削峰。
func (r *tradeRepo) lockProductMutex(ctx context.Context, productID int64) (*redsync.Mutex, error) {
	startTime := time.Now()
	mutex := r.data.rs.NewMutex(
		fmt.Sprintf("%s%d", constants.RedisKeyProductLock, productID),
		redsync.WithExpiry(r.conf.LockExpiry),
		redsync.WithTries(3),
	)
	err := mutex.LockContext(ctx)
	if r.metrics != nil {
		result := constants.ResultSuccess
		if err != nil {
			result = constants.ResultFailed
		}
		r.metrics.LockAcquireTotal.WithLabelValues(result).Inc()
		r.metrics.LockAcquireDuration.Observe(time.Since(startTime).Seconds())
	}
	if err != nil {
		r.log.Warnf("failed to acquire product lock: product_id=%d, error=%v", productID, err)
		return nil, tradeErrors.NewProductLockFailed()
	}
	return mutex, nil
}

func (r *tradeRepo) unlockProductMutex(mutex *redsync.Mutex, productID int64) {
	if _, err := mutex.Unlock(); err != nil {
		// 锁会按过期时间自动释放
		r.log.Warnf("failed to release product lock: product_id=%d, error=%v", productID, err)
	}
}

// CreateOrderReserving 落库新订单并把商品置为已预订。
// 商品可售状态与自买限制在行锁之下重新校验，SellerID 以锁下读到的商品归属冻结。
func (r *tradeRepo) CreateOrderReserving(ctx context.Context, order *biz.Order) (*biz.Product, error) {
	mutex, err := r.lockProductMutex(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}
	defer r.unlockProductMutex(mutex, order.ProductID)

	var reserved *biz.Product
	err = r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", order.ProductID).
			First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tradeErrors.NewProductNotFound()
		}
		if err != nil {
			return err
		}

		// 锁下权威校验
		if product.Status == model.ProductStatusDeleted {
			return tradeErrors.NewProductNotFound()
		}
		if product.Status != model.ProductStatusAvailable {
			return tradeErrors.NewProductUnavailable()
		}
		if product.UserID == order.BuyerID {
			return tradeErrors.NewSelfTradeForbidden()
		}

		order.SellerID = product.UserID
		m := &model.Order{
			OrderNo:       order.OrderNo,
			BuyerID:       order.BuyerID,
			SellerID:      order.SellerID,
			ProductID:     order.ProductID,
			Amount:        order.Amount,
			Status:        model.OrderStatusPending,
			BuyerConfirm:  0,
			SellerConfirm: 0,
			Remark:        order.Remark,
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return tradeErrors.NewDuplicateOrderNo()
			}
			return err
		}

		err = tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("status", model.ProductStatusReserved).Error
		if err != nil {
			return err
		}

		order.ID = m.ID
		order.Status = m.Status
		order.CreateTime = m.CreateTime
		order.UpdateTime = m.UpdateTime

		product.Status = model.ProductStatusReserved
		reserved = toBizProduct(&product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// ConfirmOrder 以 party 身份确认订单，callerID 在锁下重新校验。
// 双方确认齐全时订单进入已完成并把商品置为已售出；重复确认不落任何写入。
func (r *tradeRepo) ConfirmOrder(ctx context.Context, orderID, callerID int64, party biz.Party) (*biz.Order, *biz.Product, bool, error) {
	var (
		confirmed *biz.Order
		sold      *biz.Product
		changed   bool
	)
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tradeErrors.NewOrderNotFound()
		}
		if err != nil {
			return err
		}

		switch party {
		case biz.PartyBuyer:
			if m.BuyerID != callerID {
				return tradeErrors.NewOrderUnauthorized()
			}
		case biz.PartySeller:
			if m.SellerID != callerID {
				return tradeErrors.NewOrderUnauthorized()
			}
		default:
			return tradeErrors.NewOrderUnauthorized()
		}

		order := toBizOrder(&m)
		var completed bool
		completed, changed, err = biz.ApplyConfirm(order, party)
		if err != nil {
			return err
		}
		if !changed {
			confirmed = order
			return nil
		}

		err = tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":         order.Status,
				"buyer_confirm":  boolToInt(order.BuyerConfirm),
				"seller_confirm": boolToInt(order.SellerConfirm),
			}).Error
		if err != nil {
			return err
		}

		if completed {
			var product model.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", order.ProductID).
				First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 商品已被独立删除，订单侧完成流转不受影响
				confirmed = order
				return nil
			}
			if err != nil {
				return err
			}
			if product.Status != model.ProductStatusDeleted {
				err = tx.Model(&model.Product{}).
					Where("id = ?", product.ID).
					Update("status", model.ProductStatusSold).Error
				if err != nil {
					return err
				}
				product.Status = model.ProductStatusSold
				sold = toBizProduct(&product)
			}
		}

		confirmed = order
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	return confirmed, sold, changed, nil
}

// CancelOrder 取消订单并恢复商品可售（商品已被独立删除时跳过商品侧更新）
func (r *tradeRepo) CancelOrder(ctx context.Context, orderID, callerID int64) (*biz.Order, *biz.Product, error) {
	var (
		cancelled *biz.Order
		restored  *biz.Product
	)
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tradeErrors.NewOrderNotFound()
		}
		if err != nil {
			return err
		}

		order := toBizOrder(&m)
		if order.PartyOf(callerID) == biz.PartyNone {
			return tradeErrors.NewOrderUnauthorized()
		}
		if err := biz.ApplyCancel(order); err != nil {
			return err
		}

		err = tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Update("status", order.Status).Error
		if err != nil {
			return err
		}

		var product model.Product
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", order.ProductID).
			First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cancelled = order
			return nil
		}
		if err != nil {
			return err
		}
		if product.Status != model.ProductStatusDeleted {
			err = tx.Model(&model.Product{}).
				Where("id = ?", product.ID).
				Update("status", model.ProductStatusAvailable).Error
			if err != nil {
				return err
			}
			product.Status = model.ProductStatusAvailable
			restored = toBizProduct(&product)
		}

		cancelled = order
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return cancelled, restored, nil
}
