package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TradeMetrics 交易服务指标
type TradeMetrics struct {
	// 订单生命周期相关指标
	OrderCreateTotal    *prometheus.CounterVec   // 订单创建总数（按结果）
	OrderCreateDuration prometheus.Histogram     // 订单创建耗时
	OrderConfirmTotal   *prometheus.CounterVec   // 订单确认总数（按确认方、结果）
	OrderCancelTotal    *prometheus.CounterVec   // 订单取消总数（按结果）
	OrderCompletedTotal prometheus.Counter       // 订单完成总数（双方确认）
	OrderPurgedTotal    prometheus.Counter       // 保留期清理删除的订单数

	// 缓存相关指标
	CacheHitTotal    *prometheus.CounterVec // 缓存命中总数（按缓存类型）
	CacheMissTotal   *prometheus.CounterVec // 缓存未命中总数（按缓存类型）
	CacheEvictTotal  *prometheus.CounterVec // 缓存失效操作总数（按结果）
	CacheEvictedKeys prometheus.Counter     // 被失效的缓存 key 总数

	// 分布式锁相关指标
	LockAcquireTotal    *prometheus.CounterVec // 锁获取总数（按结果）
	LockAcquireDuration prometheus.Histogram   // 锁获取耗时

	// 通知相关指标
	NotifyPublishTotal *prometheus.CounterVec // 订单事件发布总数（按结果）
}

// NewTradeMetrics 创建交易服务指标
func NewTradeMetrics() *TradeMetrics {
	return &TradeMetrics{
		OrderCreateTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_order_create_total",
				Help: "Total number of order create attempts",
			},
			[]string{"result"}, // result: success/failed
		),
		OrderCreateDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trade_order_create_duration_seconds",
				Help:    "Duration of order create operations",
				Buckets: prometheus.DefBuckets,
			},
		),
		OrderConfirmTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_order_confirm_total",
				Help: "Total number of order confirmations",
			},
			[]string{"party", "result"}, // party: buyer/seller
		),
		OrderCancelTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_order_cancel_total",
				Help: "Total number of order cancellations",
			},
			[]string{"result"},
		),
		OrderCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trade_order_completed_total",
				Help: "Total number of orders completed by dual confirmation",
			},
		),
		OrderPurgedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trade_order_purged_total",
				Help: "Total number of cancelled orders purged by retention cleanup",
			},
		),

		CacheHitTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_cache_hit_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"}, // cache: product_detail/category_products/...
		),
		CacheMissTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_cache_miss_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),
		CacheEvictTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_cache_evict_total",
				Help: "Total number of cache eviction operations",
			},
			[]string{"result"},
		),
		CacheEvictedKeys: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trade_cache_evicted_keys_total",
				Help: "Total number of cache keys evicted",
			},
		),

		LockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_lock_acquire_total",
				Help: "Total number of product lock acquisition attempts",
			},
			[]string{"result"},
		),
		LockAcquireDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trade_lock_acquire_duration_seconds",
				Help:    "Duration of product lock acquisition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),

		NotifyPublishTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_notify_publish_total",
				Help: "Total number of order event publish attempts",
			},
			[]string{"result"},
		),
	}
}

// 全局指标实例
var defaultMetrics *TradeMetrics

// InitMetrics 初始化全局指标
func InitMetrics() {
	defaultMetrics = NewTradeMetrics()
}

// GetMetrics 获取全局指标实例
func GetMetrics() *TradeMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
