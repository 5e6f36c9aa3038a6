package xserver

import "sync"

// blockingServer 没有业务逻辑的 Server，阻塞到 Stop 被调用，用于 consumer、job 等服务
type blockingServer struct {
	once sync.Once
	quit chan struct{}
}

func newBlockingServer() *blockingServer {
	return &blockingServer{quit: make(chan struct{})}
}

func (b *blockingServer) Run() error {
	<-b.quit
	return nil
}

func (b *blockingServer) Stop() error {
	b.once.Do(func() { close(b.quit) })
	return nil
}
