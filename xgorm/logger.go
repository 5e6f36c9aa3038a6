package xgorm

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xutil"
)

// gormLogger 将 gorm 日志写入 xlog
type gormLogger struct {
	level               logger.LogLevel
	slowThreshold       time.Duration
	ignoreNotFoundError bool
}

func newGormLogger(c *Config) *gormLogger {
	return &gormLogger{
		level:               toGormLevel(xlog.Level()),
		slowThreshold:       xutil.ToDuration(c.SlowThreshold),
		ignoreNotFoundError: c.IgnoreRecordNotFoundErrorLog,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		xlog.Info(ctx, msg, args...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		xlog.Warn(ctx, msg, args...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		xlog.Error(ctx, msg, args...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	cost := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !(l.ignoreNotFoundError && errors.Is(err, gorm.ErrRecordNotFound)):
		sql, rows := fc()
		xlog.Error(ctx, "gorm sql failed, latency=[%dms], rows=[%s], sql=[%s], err=[%v]", cost.Milliseconds(), rowsText(rows), sql, err)
	case l.slowThreshold > 0 && cost > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		xlog.Warn(ctx, "gorm slow sql >= %v, latency=[%dms], rows=[%s], sql=[%s]", l.slowThreshold, cost.Milliseconds(), rowsText(rows), sql)
	case l.level >= logger.Info:
		sql, rows := fc()
		xlog.Info(ctx, "gorm sql, latency=[%dms], rows=[%s], sql=[%s]", cost.Milliseconds(), rowsText(rows), sql)
	}
}

func rowsText(rows int64) string {
	if rows < 0 {
		return "-"
	}
	return strconv.FormatInt(rows, 10)
}

func toGormLevel(l string) logger.LogLevel {
	switch strings.ToLower(l) {
	case "warn", "warning":
		return logger.Warn
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Info
	}
}
