// Package xtrace 初始化 OpenTelemetry TracerProvider 与全局 Propagator（W3C TraceContext、Baggage、B3 与自定义透传 Header）
package xtrace

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xutil"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	tracerName             = "github.com/xiaoshicae/x-one"
)

var (
	mu           sync.Mutex
	shutdownFunc func(ctx context.Context) error
	enabled      bool
)

func init() {
	xhook.BeforeStart(initXTrace, xhook.Order(3))
	xhook.BeforeStop(shutdownXTrace, xhook.Order(200))
}

func initXTrace() error {
	c, err := getConfig()
	if err != nil {
		return xerror.Newf("xtrace", "init", "get config failed, err=[%w]", err)
	}
	return initXTraceByConfig(c, xconfig.GetServerName(), xconfig.GetServerVersion())
}

func getConfig() (*Config, error) {
	c := &Config{}
	if err := xconfig.UnmarshalConfig(XTraceConfigKey, c); err != nil {
		return nil, err
	}
	return configMergeDefault(c), nil
}

func initXTraceByConfig(c *Config, serviceName, serviceVersion string) error {
	otel.SetTextMapPropagator(newPropagator(c))

	if !*c.Enable {
		otel.SetTracerProvider(noop.NewTracerProvider())
		setState(false, nil)
		xutil.InfoIfEnableDebug("XOne initXTrace skipped, XTrace.Enable=false")
		return nil
	}

	r, err := resource.New(
		context.Background(),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
			attribute.String("serviceName", serviceName),
		),
	)
	if err != nil {
		return xerror.Newf("xtrace", "init", "create resource failed, err=[%w]", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(r),
	}
	if c.Console {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return xerror.Newf("xtrace", "init", "create stdout exporter failed, err=[%w]", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	setState(true, tp.Shutdown)
	xutil.InfoIfEnableDebug("XOne initXTrace success, service=[%s], version=[%s]", serviceName, serviceVersion)
	return nil
}

func newPropagator(c *Config) propagation.TextMapPropagator {
	ps := []propagation.TextMapPropagator{propagation.TraceContext{}, propagation.Baggage{}}
	if c.B3 == nil || *c.B3 {
		ps = append(ps, b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader|b3.B3SingleHeader)))
	}
	if len(c.ForwardHeaders) > 0 {
		ps = append(ps, NewHeaderPropagator(c.ForwardHeaders))
	}
	return propagation.NewCompositeTextMapPropagator(ps...)
}

func setState(on bool, shutdown func(ctx context.Context) error) {
	mu.Lock()
	defer mu.Unlock()
	enabled = on
	shutdownFunc = shutdown
}

func shutdownXTrace() error {
	mu.Lock()
	fn := shutdownFunc
	shutdownFunc = nil
	enabled = false
	mu.Unlock()
	if fn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return xerror.New("xtrace", "shutdown", err)
	}
	return nil
}

// EnableTrace 是否已初始化真实的 TracerProvider，xhttp、xgorm、xgin 据此决定是否埋点
func EnableTrace() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Tracer 框架内部使用的 Tracer
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
