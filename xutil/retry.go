package xutil

import (
	"context"
	"time"
)

// Retry 最多执行 attempts 次 fn，两次之间间隔 sleep；attempts <= 0 时只执行一次
func Retry(fn func() error, attempts int, sleep time.Duration) error {
	return RetryWithContext(context.Background(), func(context.Context) error { return fn() }, attempts, sleep)
}

// RetryWithContext 同 Retry，ctx 结束时立即返回 ctx.Err() 与最后一次错误中先出现者
func RetryWithContext(ctx context.Context, fn func(ctx context.Context) error, attempts int, sleep time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i+1 == attempts || sleep <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return err
}
