package constants

// Redis Key 前缀常量
const (
	// RedisKeyProductDetail 商品详情缓存 key 前缀
	RedisKeyProductDetail = "product_detail:"
	// RedisKeyCategoryProducts 分类商品列表缓存 key 前缀
	RedisKeyCategoryProducts = "category_products:"
	// RedisKeyUserProducts 用户商品列表缓存 key 前缀
	RedisKeyUserProducts = "user_products:"
	// RedisKeyPopularProducts 热门商品列表缓存 key 前缀
	RedisKeyPopularProducts = "popular_products:"
	// RedisKeyProductLock 商品预订锁 key 前缀
	RedisKeyProductLock = "product:lock:"
)

// 订单号常量
const (
	// OrderNoPrefix 订单号前缀
	OrderNoPrefix = "ORD"
	// OrderNoTimeFormat 订单号时间戳格式 (yyyyMMddHHmmss)
	OrderNoTimeFormat = "20060102150405"
)

// 指标结果常量
const (
	// ResultSuccess 成功
	ResultSuccess = "success"
	// ResultFailed 失败
	ResultFailed = "failed"
)

// 确认方常量（用于指标与日志）
const (
	// PartyLabelBuyer 买家
	PartyLabelBuyer = "buyer"
	// PartyLabelSeller 卖家
	PartyLabelSeller = "seller"
)
