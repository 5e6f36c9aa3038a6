package xflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiaoshicae/x-one/xutil"
)

// Flow 流程编排器，构建完成后可重复、并发执行（每次 Execute 需使用独立的 data）
// 注意：Step / WithMonitor 等构建方法非并发安全，必须在 Execute 前完成
type Flow[T any] struct {
	name               string
	processors         []Processor[T]
	monitor            Monitor
	monitorEnabled     bool
	rollbackFailedStep bool
}

// New 创建 Flow，processors 按执行顺序排列，nil 会被忽略
func New[T any](name string, processors ...Processor[T]) *Flow[T] {
	f := &Flow[T]{name: name, processors: make([]Processor[T], 0, len(processors))}
	for _, p := range processors {
		f.Step(p)
	}
	return f
}

func (f *Flow[T]) Name() string {
	return f.name
}

// Len Processor 数量
func (f *Flow[T]) Len() int {
	return len(f.processors)
}

// Step 追加 Processor，nil 会被忽略
func (f *Flow[T]) Step(p Processor[T]) *Flow[T] {
	if p == nil {
		xutil.WarnIfEnableDebug("XOne xflow [%s] ignore nil processor", f.name)
		return f
	}
	f.processors = append(f.processors, p)
	return f
}

// EnableMonitor 开启监控，使用全局默认 Monitor（见 SetDefaultMonitor）
func (f *Flow[T]) EnableMonitor() *Flow[T] {
	f.monitorEnabled = true
	return f
}

// WithMonitor 开启监控并使用指定 Monitor，m 为 nil 时使用全局默认 Monitor
func (f *Flow[T]) WithMonitor(m Monitor) *Flow[T] {
	f.monitor = m
	f.monitorEnabled = true
	return f
}

// RollbackFailedStep 强依赖失败时，失败的 Processor 自身也参与回滚（最先回滚）。
// 默认只回滚此前已完成的 Processor
func (f *Flow[T]) RollbackFailedStep() *Flow[T] {
	f.rollbackFailedStep = true
	return f
}

// Execute 执行流程。不会 panic，也不会修改 Flow 本身；ctx 为 nil 时使用 context.Background()
func (f *Flow[T]) Execute(ctx context.Context, data *T) *ExecuteResult {
	if ctx == nil {
		ctx = context.Background()
	}
	e := &execution[T]{
		flow:    f,
		ctx:     ctx,
		data:    data,
		monitor: f.resolveMonitor(),
		result:  &ExecuteResult{},
	}
	return e.run()
}

// resolveMonitor 未开启或被配置关闭时返回 nil，此时不计时也不构造事件
func (f *Flow[T]) resolveMonitor() Monitor {
	if !f.monitorEnabled || GetConfig().DisableMonitor {
		return nil
	}
	if f.monitor != nil {
		return f.monitor
	}
	return GetDefaultMonitor()
}

// execution 单次 Execute 的状态
type execution[T any] struct {
	flow      *Flow[T]
	ctx       context.Context
	data      *T
	monitor   Monitor
	id        string
	result    *ExecuteResult
	completed []step[T]
}

// step 执行时解析一次的 Processor 信息，Name/Dependency 的 panic 不会传出 Execute
type step[T any] struct {
	p    Processor[T]
	name string
	dep  Dependency
}

func (e *execution[T]) run() *ExecuteResult {
	var start time.Time
	if e.monitor != nil {
		start = time.Now()
		e.id = uuid.NewString()
	}

	e.completed = make([]step[T], 0, len(e.flow.processors))
	for _, p := range e.flow.processors {
		s := step[T]{p: p, name: safeName(p), dep: safeDependency(p)}
		err := e.process(s)
		if err == nil {
			e.completed = append(e.completed, s)
			continue
		}

		se := &StepError{ProcessorName: s.name, Dependency: s.dep, Err: err}
		if se.Dependency == Weak {
			// 弱依赖失败仍可能已修改 data，需要参与回滚
			e.result.SkippedErrors = append(e.result.SkippedErrors, se)
			e.completed = append(e.completed, s)
			continue
		}

		e.result.Err = se
		if e.flow.rollbackFailedStep {
			e.completed = append(e.completed, s)
		}
		e.rollback()
		break
	}

	if e.monitor != nil {
		e.monitor.OnFlowDone(e.ctx, &FlowEvent{
			FlowName:    e.flow.name,
			ExecutionID: e.id,
			Result:      e.result,
			Duration:    time.Since(start),
		})
	}
	return e.result
}

func (e *execution[T]) process(s step[T]) error {
	if e.monitor == nil {
		return safeProcess(e.ctx, s.p, e.data)
	}
	start := time.Now()
	err := safeProcess(e.ctx, s.p, e.data)
	e.monitor.OnProcessDone(e.ctx, e.stepEvent(s, err, time.Since(start)))
	return err
}

// rollback 逆序回滚已完成的 Processor，单个失败不影响其余回滚，不重试
func (e *execution[T]) rollback() {
	e.result.Rolled = true
	for i := len(e.completed) - 1; i >= 0; i-- {
		s := e.completed[i]

		var start time.Time
		if e.monitor != nil {
			start = time.Now()
		}
		err := safeRollback(e.ctx, s.p, e.data)
		if e.monitor != nil {
			e.monitor.OnRollbackDone(e.ctx, e.stepEvent(s, err, time.Since(start)))
		}

		if err != nil {
			e.result.RollbackErrors = append(e.result.RollbackErrors,
				&StepError{ProcessorName: s.name, Dependency: s.dep, Err: err})
		}
	}
}

func (e *execution[T]) stepEvent(s step[T], err error, d time.Duration) *StepEvent {
	return &StepEvent{
		FlowName:      e.flow.name,
		ExecutionID:   e.id,
		ProcessorName: s.name,
		Dependency:    s.dep,
		Err:           err,
		Duration:      d,
	}
}
