package data

import (
	"fmt"
	"time"

	"campus-trade/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewDB,
	NewRedis,
	NewRedsync,
	NewData,
	NewCacheStore,
	NewOrderRepo,
	NewProductRepo,
	NewUserRepo,
	NewTradeRepo,
	NewNotificationSink,
)

// Data 数据层结构体
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	rs  *redsync.Redsync
}

// NewDB 创建数据库连接
// TranslateError 开启后，订单号唯一索引冲突可通过 gorm.ErrDuplicatedKey 识别。
func NewDB(c *conf.Bootstrap) (*gorm.DB, error) {
	if c.Data == nil || c.Data.Database == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	db, err := gorm.Open(mysql.Open(c.Data.Database.Source), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.Data.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(int(c.Data.Database.MaxIdleConns))
	}
	if c.Data.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(int(c.Data.Database.MaxOpenConns))
	}
	return db, nil
}

// NewRedis 创建 Redis 连接
func NewRedis(c *conf.Bootstrap) (*redis.Client, error) {
	if c.Data == nil || c.Data.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	var readTimeout, writeTimeout time.Duration
	if c.Data.Redis.ReadTimeoutSeconds > 0 {
		readTimeout = time.Duration(c.Data.Redis.ReadTimeoutSeconds) * time.Second
	}
	if c.Data.Redis.WriteTimeoutSeconds > 0 {
		writeTimeout = time.Duration(c.Data.Redis.WriteTimeoutSeconds) * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Data.Redis.Addr,
		Password:     c.Data.Redis.Password,
		DB:           int(c.Data.Redis.Db),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	// 测试连接
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewRedsync 创建分布式锁工厂（商品预订锁）
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(rdb))
}

// NewData 创建数据层实例
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client, rs *redsync.Redsync) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		if err := rdb.Close(); err != nil {
			log.NewHelper(logger).Errorf("failed to close redis: %v", err)
		}
	}

	return &Data{
		db:  db,
		rdb: rdb,
		rs:  rs,
	}, cleanup, nil
}
