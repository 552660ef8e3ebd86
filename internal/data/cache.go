package data

import (
	"context"
	"encoding/json"
	"time"

	"campus-trade/internal/biz"

	"github.com/go-redis/redis/v8"
)

// redisCacheStore biz.CacheStore 的 Redis 实现，value 统一 JSON 序列化
type redisCacheStore struct {
	rdb *redis.Client
}

// NewCacheStore 创建缓存存储
func NewCacheStore(data *Data) biz.CacheStore {
	return &redisCacheStore{rdb: data.rdb}
}

// Set 写入缓存
func (s *redisCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, bytes, ttl).Err()
}

// Get 读取缓存并反序列化到 dest，key 不存在时返回 (false, nil)
func (s *redisCacheStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	bytes, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(bytes, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Delete 删除指定 key
func (s *redisCacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// DeleteByPattern 按通配符批量删除，返回删除的 key 数量。
// 使用 SCAN 渐进遍历，避免 KEYS 阻塞 Redis。
func (s *redisCacheStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}
