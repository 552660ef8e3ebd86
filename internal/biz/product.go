package biz

import (
	"context"
	"fmt"
	"time"

	"campus-trade/internal/constants"
	tradeErrors "campus-trade/internal/errors"
	"campus-trade/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// Product 商品领域对象（交易核心关心的字段）
type Product struct {
	ID          int64     // 商品ID
	UserID      int64     // 卖家ID
	CategoryID  int64     // 分类ID
	Title       string    // 标题
	Description string    // 描述
	Price       float64   // 标价
	Images      string    // 图片（JSON）
	ViewCount   int64     // 浏览次数
	Status      int       // 商品状态
	CreateTime  time.Time // 创建时间
	UpdateTime  time.Time // 更新时间
}

// ProductPage 商品分页结果
type ProductPage struct {
	Items []*Product `json:"items"`
	Total int64      `json:"total"`
}

// ProductRepo 商品数据层接口（定义在 biz 层）
// GetProduct 在商品不存在时返回 (nil, nil)。
type ProductRepo interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListCategoryProducts(ctx context.Context, categoryID int64, page, size int) ([]*Product, int64, error)
	ListUserProducts(ctx context.Context, userID int64) ([]*Product, error)
	ListPopularProducts(ctx context.Context, page, size int) ([]*Product, int64, error)
}

// ProductUseCase 商品读路径业务逻辑（旁路缓存）
// 写路径归商品子系统；这里只承载交易侧消费的读查询，
// 缓存回填失败不影响读取结果。
type ProductUseCase struct {
	repo    ProductRepo
	cache   CacheStore
	conf    *TradeConfig
	log     *log.Helper
	metrics *metrics.TradeMetrics
}

// NewProductUseCase 创建商品 UseCase
func NewProductUseCase(repo ProductRepo, cache CacheStore, conf *TradeConfig, logger log.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo:    repo,
		cache:   cache,
		conf:    conf,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// GetProductDetail 获取商品详情（旁路缓存，TTL 见 TradeConfig）
func (uc *ProductUseCase) GetProductDetail(ctx context.Context, productID int64) (*Product, error) {
	cacheKey := fmt.Sprintf("%s%d", constants.RedisKeyProductDetail, productID)

	var cached Product
	if hit := uc.cacheGet(ctx, cacheKey, "product_detail", &cached); hit {
		return &cached, nil
	}

	product, err := uc.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status == ProductStatusDeleted {
		return nil, tradeErrors.NewProductNotFound()
	}

	uc.cacheSet(cacheKey, product, uc.conf.ProductDetailTTL)
	return product, nil
}

// ListCategoryProducts 分页获取分类下的商品列表（旁路缓存）
func (uc *ProductUseCase) ListCategoryProducts(ctx context.Context, categoryID int64, page, size int) (*ProductPage, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	cacheKey := fmt.Sprintf("%s%d:%d:%d", constants.RedisKeyCategoryProducts, categoryID, page, size)

	var cached ProductPage
	if hit := uc.cacheGet(ctx, cacheKey, "category_products", &cached); hit {
		return &cached, nil
	}

	items, total, err := uc.repo.ListCategoryProducts(ctx, categoryID, page, size)
	if err != nil {
		return nil, err
	}

	result := &ProductPage{Items: items, Total: total}
	uc.cacheSet(cacheKey, result, uc.conf.CategoryListTTL)
	return result, nil
}

// ListUserProducts 获取用户发布的在售商品列表（旁路缓存）
func (uc *ProductUseCase) ListUserProducts(ctx context.Context, userID int64) ([]*Product, error) {
	cacheKey := fmt.Sprintf("%s%d", constants.RedisKeyUserProducts, userID)

	var cached []*Product
	if hit := uc.cacheGet(ctx, cacheKey, "user_products", &cached); hit {
		return cached, nil
	}

	items, err := uc.repo.ListUserProducts(ctx, userID)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(cacheKey, items, uc.conf.UserListTTL)
	return items, nil
}

// ListPopularProducts 分页获取热门商品列表（按浏览量，旁路缓存）
func (uc *ProductUseCase) ListPopularProducts(ctx context.Context, page, size int) (*ProductPage, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	cacheKey := fmt.Sprintf("%s%d:%d", constants.RedisKeyPopularProducts, page, size)

	var cached ProductPage
	if hit := uc.cacheGet(ctx, cacheKey, "popular_products", &cached); hit {
		return &cached, nil
	}

	items, total, err := uc.repo.ListPopularProducts(ctx, page, size)
	if err != nil {
		return nil, err
	}

	result := &ProductPage{Items: items, Total: total}
	uc.cacheSet(cacheKey, result, uc.conf.PopularListTTL)
	return result, nil
}

// cacheGet 读缓存，缓存故障视为未命中
func (uc *ProductUseCase) cacheGet(ctx context.Context, key, label string, dest interface{}) bool {
	hit, err := uc.cache.Get(ctx, key, dest)
	if err != nil {
		uc.log.Warnf("cache get failed: key=%s, error=%v", key, err)
		return false
	}
	if uc.metrics != nil {
		if hit {
			uc.metrics.CacheHitTotal.WithLabelValues(label).Inc()
		} else {
			uc.metrics.CacheMissTotal.WithLabelValues(label).Inc()
		}
	}
	return hit
}

// cacheSet 回填缓存（独立短超时 context，失败只记录日志）
func (uc *ProductUseCase) cacheSet(key string, value interface{}, ttl time.Duration) {
	cacheCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := uc.cache.Set(cacheCtx, key, value, ttl); err != nil {
		uc.log.Warnf("cache set failed: key=%s, error=%v", key, err)
	}
}
