// Package xgin 构建带 recover、trace、访问日志中间件的 gin.Engine，并包装为 xserver.Server
package xgin

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiaoshicae/x-one/xgin/middleware"
	"github.com/xiaoshicae/x-one/xgin/trans"
	"github.com/xiaoshicae/x-one/xutil"
)

type options struct {
	enableTrace  bool
	enableLog    bool
	enableZH     bool
	logSkipPaths []string
	recovery     gin.RecoveryFunc
	middlewares  []gin.HandlerFunc
}

type Option func(*options)

// EnableTrace 是否注册 trace 中间件，默认开启
func EnableTrace(enable bool) Option {
	return func(o *options) { o.enableTrace = enable }
}

// EnableLog 是否注册访问日志中间件，默认开启
func EnableLog(enable bool) Option {
	return func(o *options) { o.enableLog = enable }
}

// EnableZHTranslations 注册 validator 中文翻译，之后可用 trans.ToZHErr 翻译绑定错误
func EnableZHTranslations(enable bool) Option {
	return func(o *options) { o.enableZH = enable }
}

// LogSkipPaths 访问日志忽略的路由，以 "/" 结尾时按前缀匹配
func LogSkipPaths(paths ...string) Option {
	return func(o *options) { o.logSkipPaths = append(o.logSkipPaths, paths...) }
}

// WithRecoveryFunc 自定义 panic 后的响应
func WithRecoveryFunc(f gin.RecoveryFunc) Option {
	return func(o *options) { o.recovery = f }
}

// WithMiddleware 追加在内置中间件之后的自定义中间件
func WithMiddleware(m ...gin.HandlerFunc) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, m...) }
}

// New 创建 gin.Engine，中间件顺序为 trace、recover、access log、自定义
func New(opts ...Option) *gin.Engine {
	o := &options{enableTrace: true, enableLog: true}
	for _, opt := range opts {
		opt(o)
	}

	setGinMode()
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	// trace 放在最前，recover 与访问日志才能带上 traceid
	if o.enableTrace {
		engine.Use(middleware.Trace())
	}
	engine.Use(middleware.Recover(o.recovery))
	if o.enableLog {
		engine.Use(middleware.AccessLog(o.logSkipPaths...))
	}
	engine.Use(o.middlewares...)

	if o.enableZH {
		if err := trans.RegisterZH(); err != nil {
			xutil.WarnIfEnableDebug("XOne xgin register zh translations failed, err=[%v]", err)
		}
	}
	return engine
}

func setGinMode() {
	if strings.TrimSpace(os.Getenv(gin.EnvGinMode)) != "" {
		return
	}
	if xutil.EnableDebug() {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
