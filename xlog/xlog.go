// Package xlog 基于 logrus 的结构化日志，文件按时间切割，自动附带 traceid、服务名、ip 等字段
package xlog

import (
	"context"
	"maps"

	"github.com/sirupsen/logrus"
)

type ctxKVKey struct{}

// Option 可以混在 args 中传入，如 xlog.Info(ctx, "hello %s", name, xlog.KV("uid", 1))
type Option func(fields logrus.Fields)

// KV 为本条日志附加一个字段
func KV(k string, v any) Option {
	return func(fields logrus.Fields) {
		fields[k] = v
	}
}

// KVMap 为本条日志附加多个字段
func KVMap(m map[string]any) Option {
	return func(fields logrus.Fields) {
		maps.Copy(fields, m)
	}
}

func Debug(ctx context.Context, msg string, args ...any) {
	RawLog(ctx, logrus.DebugLevel, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	RawLog(ctx, logrus.InfoLevel, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	RawLog(ctx, logrus.WarnLevel, msg, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	RawLog(ctx, logrus.ErrorLevel, msg, args...)
}

// RawLog args 中的 Option 作为字段，其余作为 msg 的格式化参数；ctx 为 nil 时使用 Background
func RawLog(ctx context.Context, level logrus.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !logrus.IsLevelEnabled(level) {
		return
	}

	entry := logrus.WithContext(ctx)
	if len(args) == 0 {
		entry.Log(level, msg)
		return
	}

	fmtArgs := args[:0:0]
	var fields logrus.Fields
	for _, arg := range args {
		opt, ok := arg.(Option)
		if !ok {
			fmtArgs = append(fmtArgs, arg)
			continue
		}
		if fields == nil {
			fields = logrus.Fields{}
		}
		opt(fields)
	}
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Logf(level, msg, fmtArgs...)
}

// CtxWithKV 返回携带 kvs 的新 ctx，之后用该 ctx 打印的日志都会带上这些字段；
// 与 ctx 中已有的字段合并，不修改原 map
func CtxWithKV(ctx context.Context, kvs map[string]any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	old := kvFromCtx(ctx)
	merged := make(map[string]any, len(old)+len(kvs))
	maps.Copy(merged, old)
	maps.Copy(merged, kvs)
	return context.WithValue(ctx, ctxKVKey{}, merged)
}

func kvFromCtx(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	kvs, _ := ctx.Value(ctxKVKey{}).(map[string]any)
	return kvs
}
