package xutil

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// GetTraceIDFromCtx 从 ctx 中的 span 获取 TraceID，没有有效 span 时返回空串
func GetTraceIDFromCtx(ctx context.Context) string {
	if sc := spanContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanIDFromCtx 从 ctx 中的 span 获取 SpanID，没有有效 span 时返回空串
func GetSpanIDFromCtx(ctx context.Context) string {
	if sc := spanContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

func spanContext(ctx context.Context) trace.SpanContext {
	if ctx == nil {
		return trace.SpanContext{}
	}
	return trace.SpanContextFromContext(ctx)
}
