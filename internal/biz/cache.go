package biz

import (
	"context"
	"fmt"
	"time"

	"campus-trade/internal/constants"
	"campus-trade/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// CacheStore 缓存存储接口（定义在 biz 层，data 层用 Redis 实现）
type CacheStore interface {
	// Set 写入缓存，value 由实现负责序列化
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 读取缓存并反序列化到 dest，返回是否命中
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Delete 删除指定 key
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern 按通配符批量删除，返回删除的 key 数量
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

// CacheInvalidator 缓存失效协调器
// 订单/商品状态变更提交后，负责失效所有内容依赖被变更实体的缓存条目。
// 失效是尽力而为的：缓存故障只记录日志，绝不影响已提交的事务，
// 残留的脏数据由各缓存条目的 TTL 兜底。
type CacheInvalidator struct {
	cache   CacheStore
	log     *log.Helper
	metrics *metrics.TradeMetrics
}

// NewCacheInvalidator 创建缓存失效协调器
func NewCacheInvalidator(cache CacheStore, logger log.Logger) *CacheInvalidator {
	return &CacheInvalidator{
		cache:   cache,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// EvictProduct 失效单个商品关联的全部缓存：
// 商品详情、卖家商品列表为精确 key，分类列表和热门列表按模式批量删除。
// 必须在数据库事务提交之后调用，使用独立的短超时 context，不受请求取消影响。
func (c *CacheInvalidator) EvictProduct(productID, categoryID, sellerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	failed := false

	keys := []string{
		fmt.Sprintf("%s%d", constants.RedisKeyProductDetail, productID),
		fmt.Sprintf("%s%d", constants.RedisKeyUserProducts, sellerID),
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.log.Warnf("failed to evict product caches: product_id=%d, error=%v", productID, err)
		failed = true
	} else if c.metrics != nil {
		c.metrics.CacheEvictedKeys.Add(float64(len(keys)))
	}

	patterns := []string{
		fmt.Sprintf("%s%d:*", constants.RedisKeyCategoryProducts, categoryID),
		constants.RedisKeyPopularProducts + "*",
	}
	for _, pattern := range patterns {
		n, err := c.cache.DeleteByPattern(ctx, pattern)
		if err != nil {
			c.log.Warnf("failed to evict caches by pattern: pattern=%s, error=%v", pattern, err)
			failed = true
			continue
		}
		if c.metrics != nil {
			c.metrics.CacheEvictedKeys.Add(float64(n))
		}
	}

	if c.metrics != nil {
		result := constants.ResultSuccess
		if failed {
			result = constants.ResultFailed
		}
		c.metrics.CacheEvictTotal.WithLabelValues(result).Inc()
	}
}

// SweepListings 清理全部列表类缓存（定时兜底任务调用）
func (c *CacheInvalidator) SweepListings(ctx context.Context) {
	patterns := []string{
		constants.RedisKeyCategoryProducts + "*",
		constants.RedisKeyPopularProducts + "*",
		constants.RedisKeyUserProducts + "*",
	}
	for _, pattern := range patterns {
		n, err := c.cache.DeleteByPattern(ctx, pattern)
		if err != nil {
			c.log.Warnf("failed to sweep caches: pattern=%s, error=%v", pattern, err)
			continue
		}
		c.log.Infof("swept listing caches: pattern=%s, keys=%d", pattern, n)
		if c.metrics != nil {
			c.metrics.CacheEvictedKeys.Add(float64(n))
		}
	}
}
