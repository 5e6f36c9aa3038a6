package xserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xflow"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xutil"
)

const (
	stepBeforeStart = "before-start"
	stepServe       = "serve"
	stepBeforeStop  = "before-stop"
)

var quitSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}

// notifyQuit 返回退出信号 channel 及取消监听的函数
var notifyQuit = func() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, quitSignals...)
	return ch, func() { signal.Stop(ch) }
}

// lifecycle 生命周期流程中传递的数据
type lifecycle struct {
	server Server
}

// Run 执行 BeforeStart hook 后运行 server，阻塞到退出信号或 server 自行结束，最后执行 BeforeStop hook；
// 任一阶段的错误合并后返回
func Run(server Server) error {
	if server == nil {
		return xerror.Newf("xserver", "Run", "server can not be nil")
	}
	return run(server)
}

// RunBlocking 没有 Server 的服务（consumer、job 等）使用，阻塞到退出信号
func RunBlocking() error {
	return run(newBlockingServer())
}

// R 仅执行 BeforeStart hook，用于调试或脚本
func R() error {
	return Init()
}

// Init 执行 BeforeStart hook，初始化各模块
func Init() error {
	return xhook.InvokeBeforeStartHook()
}

// Shutdown 执行 BeforeStop hook，释放各模块资源
func Shutdown() error {
	return xhook.InvokeBeforeStopHook()
}

func run(server Server) error {
	res := lifecycleFlow().Execute(context.Background(), &lifecycle{server: server})
	if res.Success() && !res.HasSkippedErrors() {
		return nil
	}
	xutil.ErrorIfEnableDebug("XOne server lifecycle finished with error, result=[%s]", res)
	return res.Error()
}

// lifecycleFlow serve 失败时回滚 before-start，即执行 BeforeStop hook；before-stop 为弱依赖，失败只记录
func lifecycleFlow() *xflow.Flow[lifecycle] {
	return xflow.New[lifecycle]("xone-lifecycle",
		xflow.NewStep[lifecycle](stepBeforeStart).
			WithProcess(func(context.Context, *lifecycle) error { return Init() }).
			WithRollback(func(context.Context, *lifecycle) error { return Shutdown() }),
		xflow.NewStep[lifecycle](stepServe).
			WithProcess(func(_ context.Context, l *lifecycle) error { return serve(l.server) }),
		xflow.NewWeakStep[lifecycle](stepBeforeStop).
			WithProcess(func(context.Context, *lifecycle) error { return Shutdown() }),
	)
}

// serve 异步运行 server，等待其结束或退出信号
func serve(s Server) error {
	quit, stop := notifyQuit()
	defer stop()

	done := make(chan error, 1)
	go func() { done <- safeRun(s) }()

	select {
	case err := <-done:
		if err != nil {
			return xerror.New("xserver", "Run", err)
		}
		xutil.WarnIfEnableDebug("XOne server stopped without quit signal")
		return nil
	case sig := <-quit:
		xutil.InfoIfEnableDebug("XOne receive signal [%v], stop server begin", sig)
		if err := safeStop(s); err != nil {
			return xerror.New("xserver", "Stop", err)
		}
		xutil.InfoIfEnableDebug("XOne stop server success")
		return nil
	}
}

func safeRun(s Server) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerror.Newf("xserver", "Run", "panic occurred, %s", xutil.PanicMessage(r))
		}
	}()
	if err = s.Run(); errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func safeStop(s Server) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = xerror.Newf("xserver", "Stop", "panic occurred, %s", xutil.PanicMessage(r))
		}
	}()
	return s.Stop()
}
