package xutil

import (
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ToPtr 返回 t 的指针
func ToPtr[T any](t T) *T {
	return &t
}

// GetOrDefault v 为零值时返回 defaultV
func GetOrDefault[T any](v T, defaultV T) T {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.IsZero() {
		return defaultV
	}
	return v
}

// ToDuration 在 cast.ToDuration 基础上支持天单位，如 "7d"、"1d12h"
func ToDuration(i any) time.Duration {
	switch v := i.(type) {
	case nil:
		return 0
	case string:
		return parseDuration(v)
	case *string:
		if v == nil {
			return 0
		}
		return parseDuration(*v)
	default:
		return cast.ToDuration(i)
	}
}

func parseDuration(s string) time.Duration {
	day, rest, found := strings.Cut(s, "d")
	if !found {
		return cast.ToDuration(s)
	}
	days, _ := cast.ToIntE(day)
	return time.Duration(days)*24*time.Hour + cast.ToDuration(rest)
}
