package xgin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xserver"
	"github.com/xiaoshicae/x-one/xutil"
)

const shutdownTimeout = 30 * time.Second

type ginServer struct {
	engine *gin.Engine

	mu  sync.Mutex
	srv *http.Server
}

// NewServer 将 engine 包装为 xserver.Server，监听地址在 Run 时从 XGin 配置读取
func NewServer(engine *gin.Engine) xserver.Server {
	return &ginServer{engine: engine}
}

// Run 以 engine 启动服务并阻塞到退出信号
func Run(engine *gin.Engine) error {
	return xserver.Run(NewServer(engine))
}

func (s *ginServer) Run() error {
	c := GetConfig()
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))

	var handler http.Handler = s.engine
	if c.UseHttp2 {
		handler = h2c.NewHandler(handler, &http2.Server{})
		xutil.InfoIfEnableDebug("XOne xgin use h2c")
	}

	s.mu.Lock()
	s.srv = &http.Server{Addr: addr, Handler: handler}
	srv := s.srv
	s.mu.Unlock()

	xutil.InfoIfEnableDebug("XOne xgin listen on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return xerror.Newf("xgin", "Run", "listen on %s failed, err=[%w]", addr, err)
	}
	return nil
}

func (s *ginServer) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	// 退出信号可能早于 Run 赋值 srv
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return xerror.New("xgin", "Stop", err)
	}
	return nil
}
