package xcache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xutil"
)

var (
	mu sync.RWMutex
	// named 按名称注册的缓存，单配置时只有默认缓存
	named = make(map[string]*Cache)
	// defaultCache 配置中的第一个缓存，或者未配置时懒创建的全局缓存
	defaultCache *Cache

	errCacheNotFound error = xerror.Newf("xcache", "get", "cache not found")
)

func init() {
	xhook.BeforeStart(initXCache, xhook.Order(20))
	xhook.BeforeStop(closeXCache, xhook.Order(300))
}

// C 按名称获取缓存，不传名称时返回默认缓存；不存在时返回 nil
func C(name ...string) *Cache {
	mu.RLock()
	defer mu.RUnlock()
	if len(name) == 0 || name[0] == "" {
		return defaultCache
	}
	if c, ok := named[name[0]]; ok {
		return c
	}
	xlog.Error(context.Background(), "xcache not found, name=[%s], please check config %s", name[0], XCacheConfigKey)
	return nil
}

// Names 已配置的缓存名称，按字典序
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// global 返回默认缓存，未配置时按默认配置懒创建
func global() *Cache {
	if c := C(); c != nil {
		return c
	}
	mu.Lock()
	defer mu.Unlock()
	if defaultCache != nil {
		return defaultCache
	}
	c, err := newCache(configMergeDefault(nil))
	if err != nil {
		xutil.ErrorIfEnableDebug("XOne xcache create global cache failed, err=[%v]", err)
		return nil
	}
	defaultCache = c
	return c
}

func initXCache() error {
	if !xconfig.ContainKey(XCacheConfigKey) {
		xutil.InfoIfEnableDebug("XOne xcache config [%s] not found, skip", XCacheConfigKey)
		return nil
	}

	configs, err := getConfigs()
	if err != nil {
		return xerror.Newf("xcache", "init", "get config failed, err=[%w]", err)
	}
	xutil.InfoIfEnableDebug("XOne initXCache got config: %s", xutil.ToJsonString(configs))

	caches := make([]*Cache, 0, len(configs))
	for _, c := range configs {
		cache, err := newCache(c)
		if err != nil {
			for _, created := range caches {
				created.Close()
			}
			return xerror.Newf("xcache", "init", "create cache [%s] failed, err=[%w]", c.Name, err)
		}
		caches = append(caches, cache)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, cache := range caches {
		if cache.name != "" {
			named[cache.name] = cache
		}
	}
	defaultCache = caches[0]
	return nil
}

// getConfigs 单个配置返回长度为 1 的列表；列表配置要求每项 Name 非空且唯一
func getConfigs() ([]*Config, error) {
	if !xutil.IsSlice(xconfig.GetConfig(XCacheConfigKey)) {
		c := &Config{}
		if err := xconfig.UnmarshalConfig(XCacheConfigKey, c); err != nil {
			return nil, err
		}
		return []*Config{configMergeDefault(c)}, nil
	}

	var configs []*Config
	if err := xconfig.UnmarshalConfig(XCacheConfigKey, &configs); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, xerror.Newf("xcache", "config", "%s is an empty list", XCacheConfigKey)
	}
	seen := make(map[string]struct{}, len(configs))
	for i, c := range configs {
		c = configMergeDefault(c)
		configs[i] = c
		if c.Name == "" {
			return nil, xerror.Newf("xcache", "config", "%s[%d].Name can not be empty", XCacheConfigKey, i)
		}
		if _, ok := seen[c.Name]; ok {
			return nil, xerror.Newf("xcache", "config", "%s.Name [%s] is duplicated", XCacheConfigKey, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return configs, nil
}

func closeXCache() error {
	mu.Lock()
	defer mu.Unlock()

	closed := make(map[*Cache]struct{}, len(named)+1)
	for _, c := range named {
		closed[c] = struct{}{}
		c.Close()
	}
	if defaultCache != nil {
		if _, ok := closed[defaultCache]; !ok {
			defaultCache.Close()
		}
	}
	clear(named)
	defaultCache = nil
	return nil
}

func toTTL(s string) time.Duration {
	return xutil.ToDuration(s)
}
