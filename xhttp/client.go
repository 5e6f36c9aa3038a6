// Package xhttp 提供按配置初始化的 resty HTTP 客户端，开启链路追踪时自动透传 trace 信息
package xhttp

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xtrace"
	"github.com/xiaoshicae/x-one/xutil"
)

type clients struct {
	resty *resty.Client
	raw   *http.Client
}

var current atomic.Pointer[clients]

func init() {
	current.Store(&clients{resty: resty.New(), raw: http.DefaultClient})
	xhook.BeforeStart(initXHttp, xhook.Order(10))
}

// C 全局 resty 客户端，建议使用 R(ctx) 以保证 trace 等信息传到下游
func C() *resty.Client {
	return current.Load().resty
}

// R 绑定 ctx 的请求
func R(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return C().R().SetContext(ctx)
}

// RawClient 与 C() 共享 Transport 的标准库客户端
func RawClient() *http.Client {
	return current.Load().raw
}

func initXHttp() error {
	c, err := getConfig()
	if err != nil {
		return xerror.Newf("xhttp", "init", "get config failed, err=[%w]", err)
	}
	xutil.InfoIfEnableDebug("XOne initXHttp got config: %s", xutil.ToJsonString(c))

	raw := newRawClient(c, xtrace.EnableTrace())
	current.Store(&clients{resty: newRestyClient(c, raw), raw: raw})
	return nil
}

func getConfig() (*Config, error) {
	c := &Config{}
	if err := xconfig.UnmarshalConfig(XHttpConfigKey, c); err != nil {
		return nil, err
	}
	return configMergeDefault(c), nil
}

// newRawClient 基于 http.DefaultTransport 克隆，保留 TLS、HTTP/2、Proxy 等默认设置
func newRawClient(c *Config, traced bool) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		t := base.Clone()
		t.MaxIdleConns = c.MaxIdleConns
		t.MaxIdleConnsPerHost = c.MaxIdleConnsPerHost
		t.IdleConnTimeout = xutil.ToDuration(c.IdleConnTimeout)
		t.DialContext = (&net.Dialer{
			Timeout:   xutil.ToDuration(c.DialTimeout),
			KeepAlive: xutil.ToDuration(c.DialKeepAlive),
		}).DialContext
		rt = t
	}

	if traced {
		rt = otelhttp.NewTransport(rt, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}))
	}

	return &http.Client{Transport: rt, Timeout: xutil.ToDuration(c.Timeout)}
}

func newRestyClient(c *Config, raw *http.Client) *resty.Client {
	rc := resty.NewWithClient(raw)
	if c.RetryCount > 0 {
		rc.SetRetryCount(c.RetryCount).
			SetRetryWaitTime(xutil.ToDuration(c.RetryWaitTime)).
			SetRetryMaxWaitTime(xutil.ToDuration(c.RetryMaxWaitTime))
	}
	return rc
}
