// Package xcache 基于 ristretto 的进程内缓存，支持多实例配置与并发加载去重
package xcache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Cache ristretto 封装；写入是异步的，Set 之后立即 Get 可能读不到，测试中可调用 Wait
type Cache struct {
	name       string
	raw        *ristretto.Cache
	defaultTTL time.Duration
	loads      singleflight.Group
}

// LoadFunc 缓存未命中时的加载函数，返回值与 ttl（<=0 时使用默认 TTL）
type LoadFunc func(ctx context.Context) (value any, ttl time.Duration, err error)

func newCache(c *Config) (*Cache, error) {
	raw, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        c.NumCounters,
		MaxCost:            c.MaxCost,
		BufferItems:        c.BufferItems,
		// MaxCost 只按 Set 时的 cost 计算，不含 ristretto 内部开销
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{name: c.Name, raw: raw, defaultTTL: toTTL(c.DefaultTTL)}, nil
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Get(key string) (any, bool) {
	return c.raw.Get(key)
}

// Set 默认 TTL，cost=1
func (c *Cache) Set(key string, value any) bool {
	return c.raw.SetWithTTL(key, value, 1, c.defaultTTL)
}

func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) bool {
	return c.raw.SetWithTTL(key, value, 1, ttl)
}

func (c *Cache) SetWithCost(key string, value any, cost int64) bool {
	return c.raw.SetWithTTL(key, value, cost, c.defaultTTL)
}

func (c *Cache) Del(key string) {
	c.raw.Del(key)
}

func (c *Cache) Clear() {
	c.raw.Clear()
}

// Wait 等待缓冲中的写入生效
func (c *Cache) Wait() {
	c.raw.Wait()
}

func (c *Cache) Close() {
	c.raw.Close()
}

// Raw 底层 ristretto 实例
func (c *Cache) Raw() *ristretto.Cache {
	return c.raw
}

// GetOrLoad 未命中时调用 loader 并写入缓存；同一 key 的并发加载只执行一次，加载失败不缓存
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader LoadFunc) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.loads.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, ttl, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		c.raw.SetWithTTL(key, v, 1, ttl)
		c.raw.Wait()
		return v, nil
	})
	return v, err
}
