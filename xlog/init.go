package xlog

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xutil"
)

// 查找调用方时跳过 xlog 自身
var skipCallerFiles = []string{
	"/xlog/xlog.go",
	"/xlog/hook.go",
}

var (
	closersMu sync.Mutex
	closers   []io.Closer
)

func init() {
	xhook.BeforeStart(initXLog, xhook.Order(2))
	// 最后关闭，保证其它模块关闭过程中的日志能够落盘
	xhook.BeforeStop(closeXLog, xhook.Order(math.MaxInt32))
}

func initXLog() error {
	c, err := getConfig()
	if err != nil {
		return xerror.Newf("xlog", "init", "get config failed, err=[%w]", err)
	}
	xutil.InfoIfEnableDebug("XOne initXLog got config: %s", xutil.ToJsonString(c))
	return initXLogByConfig(c)
}

func getConfig() (*Config, error) {
	c := &Config{}
	if err := xconfig.UnmarshalConfig(XLogConfigKey, c); err != nil {
		return nil, err
	}
	return configMergeDefault(c), nil
}

func initXLogByConfig(c *Config) error {
	if err := os.MkdirAll(c.Path, os.ModePerm); err != nil {
		return xerror.Newf("xlog", "init", "mkdir [%s] failed, err=[%w]", c.Path, err)
	}

	logFile := filepath.Join(c.Path, c.Name+".log")
	rotator, err := rotatelogs.New(
		logFile+".%Y%m%d",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithMaxAge(xutil.ToDuration(c.MaxAge)),
		rotatelogs.WithRotationTime(xutil.ToDuration(c.RotateTime)),
	)
	if err != nil {
		return xerror.Newf("xlog", "init", "create rotatelogs failed, err=[%w]", err)
	}

	var fileWriter io.WriteCloser = rotator
	if c.Async {
		fileWriter = newAsyncWriter(rotator, c.AsyncBufferSize)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		xutil.WarnIfEnableDebug("XOne initXLog load timezone [%s] failed, use Local, err=[%v]", c.Timezone, err)
		loc = time.Local
	}

	ip, _ := xutil.GetLocalIp()

	logger := logrus.StandardLogger()
	logger.SetOutput(io.Discard)
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.SetFormatter(zoneFormatter{
		Formatter: &logrus.JSONFormatter{
			TimestampFormat: consoleTimeLayout,
			CallerPrettyfier: func(*runtime.Frame) (string, string) {
				return "", ""
			},
		},
		Location: loc,
	})
	logger.AddHook(&fieldsHook{
		ServerName:     xconfig.GetServerName(),
		IP:             xutil.GetOrDefault(ip, "0.0.0.0"),
		Pid:            strconv.Itoa(os.Getpid()),
		SuffixToIgnore: skipCallerFiles,
		Console:        c.Console,
		ConsoleRaw:     c.ConsoleFormatIsRaw,
		ConsoleWriter:  os.Stdout,
	})
	logger.AddHook(&logwriter.Hook{
		Writer:    fileWriter,
		LogLevels: levelsFrom(c.Level),
	})

	lv, err := logrus.ParseLevel(c.Level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	logger.SetLevel(lv)

	// 重复初始化时关闭旧 writer
	_ = closeXLog()
	closersMu.Lock()
	closers = append(closers, fileWriter)
	closersMu.Unlock()
	return nil
}

func closeXLog() error {
	closersMu.Lock()
	cs := closers
	closers = nil
	closersMu.Unlock()

	var errs []error
	for _, c := range cs {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return xerror.New("xlog", "close", errors.Join(errs...))
	}
	return nil
}

// Level 当前配置的日志级别
func Level() string {
	return xutil.GetOrDefault(xconfig.GetString(XLogConfigKey+".Level"), "info")
}
