package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xutil"
)

// Recover panic 兜底中间件，记录 error 日志后交给 handle 处理，handle 为 nil 时返回 500
func Recover(handle gin.RecoveryFunc) gin.HandlerFunc {
	if handle == nil {
		handle = func(c *gin.Context, _ any) {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			brokenPipe := isBrokenPipe(r)
			xlog.Error(c.Request.Context(), "gin handler panic recovered, err=[%s]", xutil.PanicMessage(r),
				xlog.KV("panic_broken_pipe", brokenPipe),
				xlog.KV("panic_stack", string(debug.Stack())),
			)

			switch {
			case brokenPipe:
				_ = c.Error(r.(error))
				c.Abort()
			case c.Writer.Written():
				c.Abort()
			default:
				handle(c, r)
			}
		}()
		c.Next()
	}
}

// isBrokenPipe 客户端断开连接导致的写失败不需要再写响应
func isBrokenPipe(r any) bool {
	ne, ok := r.(*net.OpError)
	if !ok {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
