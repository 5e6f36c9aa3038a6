package xutil

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// 这里的日志只服务于 XOne 自身调试（XONE_ENABLE_DEBUG），只打印到控制台
// 业务日志请使用 xlog

const (
	currentFilePath    = "/xutil/log.go"
	maximumCallerDepth = 25
	minimumCallerDepth = 5
)

var (
	debugLogger = newDebugLogger()

	// callerIgnorePatterns 查找调用方时需要跳过的三方库文件
	callerIgnorePatterns = compilePatterns(
		`logrus(|@v.*)/(hooks|entry|logger|exported)\.go$`,
		`gorm(|@v.*)/(callbacks|finisher_api)\.go$`,
		`asm_amd64\.s$`,
	)
)

func InfoIfEnableDebug(msg string, args ...any) {
	LogIfEnableDebug(logrus.InfoLevel, msg, args...)
}

func WarnIfEnableDebug(msg string, args ...any) {
	LogIfEnableDebug(logrus.WarnLevel, msg, args...)
}

func ErrorIfEnableDebug(msg string, args ...any) {
	LogIfEnableDebug(logrus.ErrorLevel, msg, args...)
}

// LogIfEnableDebug 仅在开启调试时打印
func LogIfEnableDebug(level logrus.Level, msg string, args ...any) {
	if !EnableDebug() {
		return
	}
	debugLogger.Logf(level, msg, args...)
}

// GetLogCaller 返回第一个不属于日志框架本身的调用栈帧，suffixToIgnore 为额外需要跳过的文件后缀
func GetLogCaller(callDepth int, suffixToIgnore []string) *runtime.Frame {
	pcs := make([]uintptr, maximumCallerDepth)
	depth := runtime.Callers(minimumCallerDepth+callDepth, pcs)
	frames := runtime.CallersFrames(pcs[:depth])

	var last *runtime.Frame
	for {
		f, more := frames.Next()
		frame := f
		last = &frame
		if !shouldSkipFrame(f.File, suffixToIgnore) {
			return last
		}
		if !more {
			return last
		}
	}
}

func shouldSkipFrame(file string, suffixToIgnore []string) bool {
	for _, s := range suffixToIgnore {
		if strings.HasSuffix(file, s) {
			return true
		}
	}
	for _, re := range callerIgnorePatterns {
		if re.MatchString(file) {
			return true
		}
	}
	return false
}

func newDebugLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetReportCaller(true)
	l.Formatter = &logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.999",
		CallerPrettyfier: func(*runtime.Frame) (string, string) {
			frame := GetLogCaller(0, []string{currentFilePath})
			if frame == nil {
				return "", " ???"
			}
			return "", fmt.Sprintf(" \x1b[34m%s:%d\x1b[0m", path.Base(frame.File), frame.Line)
		},
	}
	return l
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}
