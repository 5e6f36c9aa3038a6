package xtrace

import (
	"context"
	"maps"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

type forwardHeadersKey struct{}

// HeaderPropagator 透传指定的业务 Header：Extract 时存入 ctx，Inject 时写回下游请求
type HeaderPropagator struct {
	headers []string
}

var _ propagation.TextMapPropagator = (*HeaderPropagator)(nil)

// NewHeaderPropagator headers 按 http.CanonicalHeaderKey 规范化，空值忽略
func NewHeaderPropagator(headers []string) *HeaderPropagator {
	hs := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			hs = append(hs, http.CanonicalHeaderKey(h))
		}
	}
	return &HeaderPropagator{headers: hs}
}

func (p *HeaderPropagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	var merged map[string]string
	for _, h := range p.headers {
		v := carrier.Get(h)
		if v == "" {
			continue
		}
		if merged == nil {
			merged = make(map[string]string, len(p.headers))
			maps.Copy(merged, forwardHeaders(ctx))
		}
		merged[h] = v
	}
	if merged == nil {
		return ctx
	}
	return context.WithValue(ctx, forwardHeadersKey{}, merged)
}

func (p *HeaderPropagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	vals := forwardHeaders(ctx)
	for _, h := range p.headers {
		if v := vals[h]; v != "" {
			carrier.Set(h, v)
		}
	}
}

func (p *HeaderPropagator) Fields() []string {
	return append([]string(nil), p.headers...)
}

func forwardHeaders(ctx context.Context) map[string]string {
	m, _ := ctx.Value(forwardHeadersKey{}).(map[string]string)
	return m
}

// ForwardHeadersFromContext 返回 ctx 中全部透传 Header 的拷贝
func ForwardHeadersFromContext(ctx context.Context) map[string]string {
	m := forwardHeaders(ctx)
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// ForwardHeaderFromContext key 大小写不敏感
func ForwardHeaderFromContext(ctx context.Context, key string) string {
	return forwardHeaders(ctx)[http.CanonicalHeaderKey(key)]
}
