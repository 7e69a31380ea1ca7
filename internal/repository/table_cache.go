package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const tableCachePrefix = "score:table:"

// TableCache 缓存已解析的表格，key 为文件内容哈希，内容不变结果就不变
type TableCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewTableCache(rdb *redis.Client, ttl time.Duration) *TableCache {
	return &TableCache{Redis: rdb, TTL: ttl}
}

// Get 命中时把缓存内容解码到 v 并返回 true
func (c *TableCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.Redis.Get(ctx, tableCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TableCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, tableCachePrefix+key, data, c.TTL).Err()
}

func (c *TableCache) Delete(ctx context.Context, key string) error {
	return c.Redis.Del(ctx, tableCachePrefix+key).Err()
}
