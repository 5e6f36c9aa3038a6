// Package xserver 以 xflow 编排进程生命周期：执行 BeforeStart hook，运行 Server 直到退出信号，再执行 BeforeStop hook
package xserver

// Server 服务接口
type Server interface {
	// Run 以阻塞方式运行服务，返回即视为服务结束
	Run() error

	// Stop 收到退出信号后调用，Run 应随之返回
	Stop() error
}
