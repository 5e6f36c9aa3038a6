package xlog

import (
	"io"
	"sync"
)

const defaultAsyncBufferSize = 4096

// asyncWriter 通过 channel 将写文件移到独立 goroutine，Close 时等待队列写完
type asyncWriter struct {
	ch     chan []byte
	w      io.WriteCloser
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
	err    error
}

func newAsyncWriter(w io.WriteCloser, size int) *asyncWriter {
	if size <= 0 {
		size = defaultAsyncBufferSize
	}
	aw := &asyncWriter{
		ch:   make(chan []byte, size),
		w:    w,
		done: make(chan struct{}),
	}
	go aw.loop()
	return aw
}

// Write 调用方可能复用 p，这里必须拷贝；关闭后的写入被丢弃
func (aw *asyncWriter) Write(p []byte) (int, error) {
	aw.mu.RLock()
	defer aw.mu.RUnlock()
	if aw.closed {
		return 0, io.ErrClosedPipe
	}
	aw.ch <- append([]byte(nil), p...)
	return len(p), nil
}

func (aw *asyncWriter) Close() error {
	aw.once.Do(func() {
		aw.mu.Lock()
		aw.closed = true
		close(aw.ch)
		aw.mu.Unlock()
		<-aw.done
		aw.err = aw.w.Close()
	})
	return aw.err
}

func (aw *asyncWriter) loop() {
	defer close(aw.done)
	for buf := range aw.ch {
		_, _ = aw.w.Write(buf)
	}
}
