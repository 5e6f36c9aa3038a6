package xcache

import (
	"context"
	"time"
)

// TypedCache 类型安全的缓存视图，类型不匹配的值视为未命中
type TypedCache[V any] struct {
	cache *Cache
}

// Of 不传名称时使用默认缓存
func Of[V any](name ...string) *TypedCache[V] {
	if len(name) > 0 && name[0] != "" {
		return &TypedCache[V]{cache: C(name[0])}
	}
	return &TypedCache[V]{cache: global()}
}

func (t *TypedCache[V]) Get(key string) (V, bool) {
	if t.cache == nil {
		var zero V
		return zero, false
	}
	return cast[V](t.cache.Get(key))
}

func (t *TypedCache[V]) Set(key string, value V) bool {
	return t.cache != nil && t.cache.Set(key, value)
}

func (t *TypedCache[V]) SetWithTTL(key string, value V, ttl time.Duration) bool {
	return t.cache != nil && t.cache.SetWithTTL(key, value, ttl)
}

func (t *TypedCache[V]) Del(key string) {
	if t.cache != nil {
		t.cache.Del(key)
	}
}

func (t *TypedCache[V]) Wait() {
	if t.cache != nil {
		t.cache.Wait()
	}
}

// GetOrLoad 见 Cache.GetOrLoad
func (t *TypedCache[V]) GetOrLoad(ctx context.Context, key string, loader func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	var zero V
	if t.cache == nil {
		return zero, errCacheNotFound
	}
	v, err := t.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, time.Duration, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, _ := v.(V)
	return typed, nil
}

// Get 读取默认缓存
func Get[V any](key string) (V, bool) {
	return Of[V]().Get(key)
}

// Set 写入默认缓存
func Set(key string, value any) bool {
	c := global()
	return c != nil && c.Set(key, value)
}

func SetWithTTL(key string, value any, ttl time.Duration) bool {
	c := global()
	return c != nil && c.SetWithTTL(key, value, ttl)
}

func Del(key string) {
	if c := global(); c != nil {
		c.Del(key)
	}
}

func cast[V any](v any, ok bool) (V, bool) {
	if !ok {
		var zero V
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}
