// Package xone 服务入口，引入即注册各模块的生命周期 hook
//
//	func main() {
//		engine := xgin.New()
//		engine.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
//		if err := xone.RunGin(engine); err != nil {
//			panic(err)
//		}
//	}
package xone

import (
	"github.com/gin-gonic/gin"

	_ "github.com/xiaoshicae/x-one/xcache"
	_ "github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xgin"
	_ "github.com/xiaoshicae/x-one/xgorm"
	_ "github.com/xiaoshicae/x-one/xhttp"
	_ "github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xserver"
	_ "github.com/xiaoshicae/x-one/xtrace"
)

type Server = xserver.Server

// Run 启动 server，阻塞到退出信号
func Run(server Server) error {
	return xserver.Run(server)
}

// RunGin 启动 gin 服务，监听地址见 XGin 配置
func RunGin(engine *gin.Engine) error {
	return xgin.Run(engine)
}

// RunBlocking 没有 Server 的服务使用，阻塞到退出信号
func RunBlocking() error {
	return xserver.RunBlocking()
}

// R 仅执行 BeforeStart hook，一般用于调试
func R() error {
	return xserver.R()
}

// Init 初始化全部模块
func Init() error {
	return xserver.Init()
}

// Shutdown 释放全部模块资源
func Shutdown() error {
	return xserver.Shutdown()
}
