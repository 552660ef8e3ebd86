package conf

// Bootstrap 应用启动配置
// 上游网关/API 层不在本服务范围内，配置结构为手写结构体，
// 由 kratos config 从 configs/config.yaml 扫描填充。
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Trade  *Trade  `json:"trade"`
}

// Server 服务器配置
type Server struct {
	Http *HTTP `json:"http"`
}

// HTTP HTTP 服务器配置
type HTTP struct {
	Network        string `json:"network"`
	Addr           string `json:"addr"`
	TimeoutSeconds int32  `json:"timeout_seconds"`
}

// Data 数据层配置
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Rocketmq *Rocketmq `json:"rocketmq"`
}

// Database 数据库配置
type Database struct {
	Source       string `json:"source"`
	MaxIdleConns int32  `json:"max_idle_conns"`
	MaxOpenConns int32  `json:"max_open_conns"`
}

// Redis Redis 配置
type Redis struct {
	Addr                string `json:"addr"`
	Password            string `json:"password"`
	Db                  int32  `json:"db"`
	ReadTimeoutSeconds  int32  `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int32  `json:"write_timeout_seconds"`
}

// Rocketmq 订单事件通知队列配置
type Rocketmq struct {
	Enabled     bool     `json:"enabled"`
	NameServers []string `json:"name_servers"`
	Topic       string   `json:"topic"`
	GroupName   string   `json:"group_name"`
	RetryTimes  int32    `json:"retry_times"`
}

// Trade 交易业务配置
type Trade struct {
	ProductDetailTTLMinutes int32 `json:"product_detail_ttl_minutes"`
	CategoryListTTLMinutes  int32 `json:"category_list_ttl_minutes"`
	UserListTTLMinutes      int32 `json:"user_list_ttl_minutes"`
	PopularListTTLMinutes   int32 `json:"popular_list_ttl_minutes"`
	LockExpirySeconds       int32 `json:"lock_expiry_seconds"`
	OrderNoMaxRetry         int32 `json:"order_no_max_retry"`
	CancelledRetentionDays  int32 `json:"cancelled_retention_days"`
}
