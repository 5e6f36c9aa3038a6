package xutil

import (
	"os"
	"strings"
)

// DebugEnvKey 开启框架自身调试日志的环境变量
const DebugEnvKey = "XONE_ENABLE_DEBUG"

// EnableDebug 是否开启 XOne 调试日志，用于观察框架启动/关闭过程
func EnableDebug() bool {
	return IsTruthy(os.Getenv(DebugEnvKey))
}

// IsTruthy 判断字符串是否表达"真"，大小写与首尾空白不敏感
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
