package xcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/bytedance/mockey"
	c "github.com/smartystreets/goconvey/convey"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
)

func newTestCache(name string) *Cache {
	cache, err := newCache(configMergeDefault(&Config{Name: name, NumCounters: 1000, MaxCost: 100}))
	if err != nil {
		panic(err)
	}
	return cache
}

func TestXCacheConfig(t *testing.T) {
	PatchConvey("TestXCacheConfig", t, func() {
		c.So(configMergeDefault(nil), c.ShouldResemble, &Config{
			NumCounters: defaultNumCounters,
			MaxCost:     defaultMaxCost,
			BufferItems: defaultBufferItems,
			DefaultTTL:  defaultTTL,
		})
		conf := configMergeDefault(&Config{MaxCost: 10, DefaultTTL: "1d", Name: "a"})
		c.So(conf.MaxCost, c.ShouldEqual, 10)
		c.So(toTTL(conf.DefaultTTL), c.ShouldEqual, 24*time.Hour)
	})
}

func TestCache(t *testing.T) {
	PatchConvey("TestCache", t, func() {
		cache := newTestCache("a")
		defer cache.Close()
		c.So(cache.Name(), c.ShouldEqual, "a")
		c.So(cache.Raw(), c.ShouldNotBeNil)

		c.So(cache.Set("k1", "v1"), c.ShouldBeTrue)
		c.So(cache.SetWithTTL("k2", 2, time.Minute), c.ShouldBeTrue)
		c.So(cache.SetWithCost("k3", 3, 1), c.ShouldBeTrue)
		cache.Wait()

		v, ok := cache.Get("k1")
		c.So(ok, c.ShouldBeTrue)
		c.So(v, c.ShouldEqual, "v1")

		cache.Del("k1")
		_, ok = cache.Get("k1")
		c.So(ok, c.ShouldBeFalse)

		cache.Clear()
		_, ok = cache.Get("k2")
		c.So(ok, c.ShouldBeFalse)
	})
}

func TestCache_CostIsEntryCount(t *testing.T) {
	PatchConvey("TestCache_CostIsEntryCount", t, func() {
		cache := newTestCache("capacity")
		defer cache.Close()

		for i := 0; i < 80; i++ {
			cache.Set(fmt.Sprintf("k%d", i), i)
			cache.Wait()
		}

		kept := 0
		for i := 0; i < 80; i++ {
			if _, ok := cache.Get(fmt.Sprintf("k%d", i)); ok {
				kept++
			}
		}
		c.So(kept, c.ShouldEqual, 80)
	})
}

func TestCache_GetOrLoad(t *testing.T) {
	PatchConvey("TestCache_GetOrLoad", t, func() {
		cache := newTestCache("")
		defer cache.Close()

		PatchConvey("Dedup", func() {
			var calls int32
			release := make(chan struct{})
			loader := func(context.Context) (any, time.Duration, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "loaded", 0, nil
			}

			var wg sync.WaitGroup
			results := make([]any, 10)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = cache.GetOrLoad(context.Background(), "k", loader)
				}(i)
			}
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			c.So(atomic.LoadInt32(&calls), c.ShouldEqual, 1)
			for _, r := range results {
				c.So(r, c.ShouldEqual, "loaded")
			}

			// 已缓存，不再加载
			v, err := cache.GetOrLoad(context.Background(), "k", loader)
			c.So(err, c.ShouldBeNil)
			c.So(v, c.ShouldEqual, "loaded")
			c.So(atomic.LoadInt32(&calls), c.ShouldEqual, 1)
		})

		PatchConvey("ErrorNotCached", func() {
			_, err := cache.GetOrLoad(context.Background(), "bad", func(context.Context) (any, time.Duration, error) {
				return nil, 0, errors.New("db down")
			})
			c.So(err.Error(), c.ShouldEqual, "db down")
			_, ok := cache.Get("bad")
			c.So(ok, c.ShouldBeFalse)
		})
	})
}

func TestRegistry(t *testing.T) {
	PatchConvey("TestRegistry", t, func() {
		defer func() { _ = closeXCache() }()

		PatchConvey("NotConfigured", func() {
			Mock(xconfig.ContainKey).Return(false).Build()
			c.So(initXCache(), c.ShouldBeNil)
			c.So(Names(), c.ShouldBeEmpty)

			// 懒创建全局缓存
			c.So(Set("g", 1), c.ShouldBeTrue)
			C().Wait()
			v, ok := Get[int]("g")
			c.So(ok, c.ShouldBeTrue)
			c.So(v, c.ShouldEqual, 1)

			_, ok = Get[string]("g")
			c.So(ok, c.ShouldBeFalse)

			Del("g")
			_, ok = Get[int]("g")
			c.So(ok, c.ShouldBeFalse)
		})

		PatchConvey("Single", func() {
			Mock(xconfig.ContainKey).Return(true).Build()
			Mock(xconfig.GetConfig).Return(map[string]any{"MaxCost": 10}).Build()
			Mock(xconfig.UnmarshalConfig).To(func(key string, conf any) error {
				conf.(*Config).MaxCost = 10
				return nil
			}).Build()

			c.So(initXCache(), c.ShouldBeNil)
			c.So(C(), c.ShouldNotBeNil)
			c.So(Names(), c.ShouldBeEmpty)
			c.So(C("missing"), c.ShouldBeNil)
		})

		PatchConvey("Multi", func() {
			Mock(xconfig.ContainKey).Return(true).Build()
			Mock(xconfig.GetConfig).Return([]any{map[string]any{}, map[string]any{}}).Build()
			Mock(xconfig.UnmarshalConfig).To(func(key string, conf any) error {
				*conf.(*[]*Config) = []*Config{{Name: "user"}, {Name: "order", DefaultTTL: "1m"}}
				return nil
			}).Build()

			c.So(initXCache(), c.ShouldBeNil)
			c.So(Names(), c.ShouldResemble, []string{"order", "user"})
			c.So(C(), c.ShouldEqual, C("user"))

			typed := Of[string]("order")
			c.So(typed.Set("o1", "paid"), c.ShouldBeTrue)
			typed.Wait()
			v, ok := typed.Get("o1")
			c.So(ok, c.ShouldBeTrue)
			c.So(v, c.ShouldEqual, "paid")

			loaded, err := Of[int]("user").GetOrLoad(context.Background(), "u1", func(context.Context) (int, time.Duration, error) {
				return 42, time.Minute, nil
			})
			c.So(err, c.ShouldBeNil)
			c.So(loaded, c.ShouldEqual, 42)

			c.So(closeXCache(), c.ShouldBeNil)
			c.So(Names(), c.ShouldBeEmpty)
		})

		PatchConvey("MultiEmptyName", func() {
			Mock(xconfig.ContainKey).Return(true).Build()
			Mock(xconfig.GetConfig).Return([]any{map[string]any{}}).Build()
			Mock(xconfig.UnmarshalConfig).To(func(key string, conf any) error {
				*conf.(*[]*Config) = []*Config{{Name: ""}}
				return nil
			}).Build()
			err := initXCache()
			c.So(xerror.Is(err, "xcache"), c.ShouldBeTrue)
			c.So(err.Error(), c.ShouldContainSubstring, "Name can not be empty")
		})

		PatchConvey("MultiDuplicated", func() {
			Mock(xconfig.ContainKey).Return(true).Build()
			Mock(xconfig.GetConfig).Return([]any{map[string]any{}, map[string]any{}}).Build()
			Mock(xconfig.UnmarshalConfig).To(func(key string, conf any) error {
				*conf.(*[]*Config) = []*Config{{Name: "a"}, {Name: "a"}}
				return nil
			}).Build()
			c.So(initXCache().Error(), c.ShouldContainSubstring, "duplicated")
		})
	})
}

func TestTypedCache_Nil(t *testing.T) {
	PatchConvey("TestTypedCache_Nil", t, func() {
		typed := &TypedCache[int]{}
		_, ok := typed.Get("a")
		c.So(ok, c.ShouldBeFalse)
		c.So(typed.Set("a", 1), c.ShouldBeFalse)
		c.So(typed.SetWithTTL("a", 1, time.Second), c.ShouldBeFalse)
		c.So(func() { typed.Del("a"); typed.Wait() }, c.ShouldNotPanic)

		_, err := typed.GetOrLoad(context.Background(), "a", func(context.Context) (int, time.Duration, error) { return 1, 0, nil })
		c.So(err, c.ShouldEqual, errCacheNotFound)
	})
}
