// Package xhook 提供进程生命周期 hook：BeforeStart 在服务启动前按序执行，BeforeStop 在服务退出前执行
package xhook

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xutil"

	"golang.org/x/exp/slices"
)

const (
	phaseBeforeStart = "BeforeStart"
	phaseBeforeStop  = "BeforeStop"
)

var (
	defaultStopTimeout = 30 * time.Second
	maxHookNum         = 1000
)

// HookFunc hook 函数
type HookFunc func() error

type hook struct {
	fn   HookFunc
	name string
	opts *options
}

// hookList 某一阶段的 hook 集合，排序延迟到执行时进行
type hookList struct {
	phase  string
	hooks  []hook
	seen   map[uintptr]struct{}
	sorted bool
}

var (
	mu          sync.RWMutex
	stopTimeout = defaultStopTimeout
	startHooks  = newHookList(phaseBeforeStart)
	stopHooks   = newHookList(phaseBeforeStop)
)

func newHookList(phase string) *hookList {
	return &hookList{phase: phase, seen: make(map[uintptr]struct{}), sorted: true}
}

// BeforeStart 注册启动前 hook，同一函数重复注册会被忽略
func BeforeStart(f HookFunc, opts ...Option) {
	register(phaseBeforeStart, f, opts)
}

// BeforeStop 注册退出前 hook，同一函数重复注册会被忽略
func BeforeStop(f HookFunc, opts ...Option) {
	register(phaseBeforeStop, f, opts)
}

// SetStopTimeout 设置 BeforeStop 阶段整体超时
func SetStopTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	mu.Lock()
	stopTimeout = timeout
	mu.Unlock()
}

// Reset 清空全部已注册 hook 并恢复默认设置，主要用于测试
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	startHooks = newHookList(phaseBeforeStart)
	stopHooks = newHookList(phaseBeforeStop)
	stopTimeout = defaultStopTimeout
}

func register(phase string, f HookFunc, opts []Option) {
	if f == nil {
		panic(fmt.Sprintf("XOne %s hook can not be nil", phase))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	mu.Lock()
	defer mu.Unlock()

	l := currentList(phase)

	if len(l.hooks) >= maxHookNum {
		panic(fmt.Sprintf("XOne %s hook can not be more than %d", l.phase, maxHookNum))
	}

	fp := reflect.ValueOf(f).Pointer()
	if _, ok := l.seen[fp]; ok {
		xutil.WarnIfEnableDebug("XOne %s hook duplicate registration ignored, func=[%s]", l.phase, funcFullName(f))
		return
	}
	l.seen[fp] = struct{}{}
	l.hooks = append(l.hooks, hook{fn: f, name: funcFullName(f), opts: o})
	l.sorted = false
}

func currentList(phase string) *hookList {
	if phase == phaseBeforeStart {
		return startHooks
	}
	return stopHooks
}

// snapshot 返回按 Order 稳定排序后的副本
func snapshot(phase string) []hook {
	mu.Lock()
	defer mu.Unlock()
	l := currentList(phase)
	if !l.sorted {
		slices.SortStableFunc(l.hooks, func(a, b hook) int { return a.opts.Order - b.opts.Order })
		l.sorted = true
	}
	return slices.Clone(l.hooks)
}

// InvokeBeforeStartHook 按序执行 BeforeStart hook，MustInvokeSuccess 的 hook 失败时立即中止
func InvokeBeforeStartHook() error {
	for _, h := range snapshot(phaseBeforeStart) {
		err := invokeWithTimeout(h, h.opts.Timeout)
		if err == nil {
			xutil.InfoIfEnableDebug("XOne invoke before start hook success, func=[%s]", h.name)
			continue
		}
		if h.opts.MustInvokeSuccess {
			xutil.ErrorIfEnableDebug("XOne invoke before start hook failed, func=[%s], err=[%v]", h.name, err)
			return xerror.Newf("xhook", "BeforeStart", "func=[%s], err=[%w]", h.name, err)
		}
		xutil.WarnIfEnableDebug("XOne invoke before start hook failed but MustInvokeSuccess=false, continue, func=[%s], err=[%v]", h.name, err)
	}
	return nil
}

// InvokeBeforeStopHook 执行全部 BeforeStop hook，单个失败不影响后续，错误合并返回；
// 整体超过 stop timeout 时放弃等待剩余 hook
func InvokeBeforeStopHook() error {
	hooks := snapshot(phaseBeforeStop)
	if len(hooks) == 0 {
		return nil
	}

	mu.RLock()
	timeout := stopTimeout
	mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- invokeStopHooks(ctx, hooks) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return xerror.Newf("xhook", "BeforeStop", "timeout after %v", timeout)
	}
}

func invokeStopHooks(ctx context.Context, hooks []hook) error {
	var errs []error
	for i, h := range hooks {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("interrupted, completed %d/%d hooks", i, len(hooks)))
			break
		}

		timeout := h.opts.Timeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
				timeout = remaining
			}
		}

		if err := invokeWithTimeout(h, timeout); err != nil {
			xutil.ErrorIfEnableDebug("XOne invoke before stop hook failed, func=[%s], err=[%v]", h.name, err)
			errs = append(errs, fmt.Errorf("func=[%s], err=[%w]", h.name, err))
			continue
		}
		xutil.InfoIfEnableDebug("XOne invoke before stop hook success, func=[%s]", h.name)
	}
	if len(errs) == 0 {
		return nil
	}
	return xerror.New("xhook", "BeforeStop", errors.Join(errs...))
}

// invokeWithTimeout 超时只是放弃等待，hook 所在 goroutine 会一直运行到函数返回
func invokeWithTimeout(h hook, timeout time.Duration) error {
	if timeout <= 0 {
		return safeInvoke(h.fn)
	}

	ch := make(chan error, 1)
	go func() { ch <- safeInvoke(h.fn) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-ch:
		return err
	case <-timer.C:
		return fmt.Errorf("hook timeout after %v", timeout)
	}
}

func safeInvoke(f HookFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred, %s", xutil.PanicMessage(r))
		}
	}()
	return f()
}

func funcFullName(f HookFunc) string {
	file, line, name := xutil.GetFuncInfo(f)
	return fmt.Sprintf("%s:%d %s()", file, line, name)
}
