package xlog

import (
	"context"
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiaoshicae/x-one/xutil"
)

const consoleTimeLayout = "2006-01-02 15:04:05.999"

// fieldsHook 为每条日志补充公共字段，并按需输出到控制台
type fieldsHook struct {
	ServerName     string
	IP             string
	Pid            string
	SuffixToIgnore []string
	Console        bool
	ConsoleRaw     bool
	ConsoleWriter  io.Writer
}

func (h *fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fieldsHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["servername"]; !ok {
		entry.Data["servername"] = h.ServerName
	}
	entry.Data["ip"] = h.IP
	entry.Data["pid"] = h.Pid

	caller := entry.Caller
	if caller == nil {
		caller = xutil.GetLogCaller(0, h.SuffixToIgnore)
	}
	if caller != nil {
		entry.Data["filename"] = path.Base(caller.File)
		entry.Data["lineid"] = strconv.Itoa(caller.Line)
	}

	entry.Data["traceid"] = xutil.GetTraceIDFromCtx(entry.Context)
	entry.Data["spanid"] = xutil.GetSpanIDFromCtx(entry.Context)
	for k, v := range kvFromCtx(entry.Context) {
		entry.Data[k] = v
	}

	if !h.Console {
		return nil
	}
	return h.printConsole(entry, caller)
}

func (h *fieldsHook) printConsole(entry *logrus.Entry, caller *runtime.Frame) error {
	if h.ConsoleRaw {
		line, err := entry.Bytes()
		if err != nil {
			return err
		}
		_, err = h.ConsoleWriter.Write(line)
		return err
	}

	file := "???"
	if caller != nil {
		file = fmt.Sprintf("%s:%d", path.Base(caller.File), caller.Line)
	}
	msg := fmt.Appendf(nil, "\x1b[%dm%s\x1b[0m[%s] \x1b[34m%s\x1b[0m %v %s\n",
		levelColor(entry.Level), strings.ToUpper(entry.Level.String()),
		entry.Time.Format(consoleTimeLayout), file, entry.Data["traceid"], entry.Message)
	_, err := h.ConsoleWriter.Write(msg)
	return err
}

func levelColor(l logrus.Level) int {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return 31
	default:
		return 36
	}
}

// zoneFormatter 在指定时区下格式化时间，拷贝 entry 避免多个 writer 并发修改
type zoneFormatter struct {
	logrus.Formatter
	Location *time.Location
}

func (f zoneFormatter) Format(e *logrus.Entry) ([]byte, error) {
	cp := *e
	if cp.Context == nil {
		cp.Context = context.Background()
	}
	if f.Location != nil {
		cp.Time = cp.Time.In(f.Location)
	}
	return f.Formatter.Format(&cp)
}

// levelsFrom 返回 >= 指定级别严重程度的全部级别
func levelsFrom(level string) []logrus.Level {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	res := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= lv {
			res = append(res, l)
		}
	}
	return res
}
