package biz

import (
	"time"

	"campus-trade/internal/conf"
)

// 交易配置默认值
const (
	defaultProductDetailTTL   = 30 * time.Minute
	defaultCategoryListTTL    = 20 * time.Minute
	defaultUserListTTL        = 10 * time.Minute
	defaultPopularListTTL     = 15 * time.Minute
	defaultLockExpiry         = 5 * time.Second
	defaultOrderNoMaxRetry    = 3
	defaultCancelledRetention = 90 * 24 * time.Hour
)

// TradeConfig 交易业务配置（由 conf.Trade 填充，未配置项取默认值）
type TradeConfig struct {
	ProductDetailTTL   time.Duration // 商品详情缓存时长
	CategoryListTTL    time.Duration // 分类列表缓存时长
	UserListTTL        time.Duration // 用户商品列表缓存时长
	PopularListTTL     time.Duration // 热门列表缓存时长
	LockExpiry         time.Duration // 商品锁过期时间
	OrderNoMaxRetry    int           // 订单号冲突时的重新生成次数
	CancelledRetention time.Duration // 已取消订单保留时长
}

// NewTradeConfig 创建交易配置
func NewTradeConfig(bc *conf.Bootstrap) *TradeConfig {
	c := &TradeConfig{
		ProductDetailTTL:   defaultProductDetailTTL,
		CategoryListTTL:    defaultCategoryListTTL,
		UserListTTL:        defaultUserListTTL,
		PopularListTTL:     defaultPopularListTTL,
		LockExpiry:         defaultLockExpiry,
		OrderNoMaxRetry:    defaultOrderNoMaxRetry,
		CancelledRetention: defaultCancelledRetention,
	}
	if bc == nil || bc.Trade == nil {
		return c
	}

	t := bc.Trade
	if t.ProductDetailTTLMinutes > 0 {
		c.ProductDetailTTL = time.Duration(t.ProductDetailTTLMinutes) * time.Minute
	}
	if t.CategoryListTTLMinutes > 0 {
		c.CategoryListTTL = time.Duration(t.CategoryListTTLMinutes) * time.Minute
	}
	if t.UserListTTLMinutes > 0 {
		c.UserListTTL = time.Duration(t.UserListTTLMinutes) * time.Minute
	}
	if t.PopularListTTLMinutes > 0 {
		c.PopularListTTL = time.Duration(t.PopularListTTLMinutes) * time.Minute
	}
	if t.LockExpirySeconds > 0 {
		c.LockExpiry = time.Duration(t.LockExpirySeconds) * time.Second
	}
	if t.OrderNoMaxRetry > 0 {
		c.OrderNoMaxRetry = int(t.OrderNoMaxRetry)
	}
	if t.CancelledRetentionDays > 0 {
		c.CancelledRetention = time.Duration(t.CancelledRetentionDays) * 24 * time.Hour
	}
	return c
}
