package xflow

import (
	"context"
	"sync"
	"time"

	"github.com/xiaoshicae/x-one/xlog"
)

// StepEvent 单个 Processor 的 Process 或 Rollback 完成
type StepEvent struct {
	FlowName      string
	ExecutionID   string
	ProcessorName string
	Dependency    Dependency
	// Err nil 表示成功
	Err      error
	Duration time.Duration
}

// FlowEvent 一次 Execute 完成，Duration 包含回滚耗时
type FlowEvent struct {
	FlowName    string
	ExecutionID string
	Result      *ExecuteResult
	Duration    time.Duration
}

// Monitor 观测流程执行，回调在执行 goroutine 中同步调用
type Monitor interface {
	OnProcessDone(ctx context.Context, e *StepEvent)
	OnRollbackDone(ctx context.Context, e *StepEvent)
	OnFlowDone(ctx context.Context, e *FlowEvent)
}

// NopMonitor 空实现，嵌入后只需覆盖关心的回调
type NopMonitor struct{}

func (NopMonitor) OnProcessDone(context.Context, *StepEvent) {}

func (NopMonitor) OnRollbackDone(context.Context, *StepEvent) {}

func (NopMonitor) OnFlowDone(context.Context, *FlowEvent) {}

// logMonitor 默认实现，输出到 xlog
type logMonitor struct{}

func (logMonitor) OnProcessDone(ctx context.Context, e *StepEvent) {
	if e.Err != nil {
		xlog.Warn(ctx, "xflow process failed, flow=[%s], processor=[%s], dependency=[%s], duration=[%s], err=[%v]",
			e.FlowName, e.ProcessorName, e.Dependency, e.Duration, e.Err, xlog.KV("execution_id", e.ExecutionID))
		return
	}
	xlog.Debug(ctx, "xflow process success, flow=[%s], processor=[%s], dependency=[%s], duration=[%s]",
		e.FlowName, e.ProcessorName, e.Dependency, e.Duration, xlog.KV("execution_id", e.ExecutionID))
}

func (logMonitor) OnRollbackDone(ctx context.Context, e *StepEvent) {
	if e.Err != nil {
		xlog.Warn(ctx, "xflow rollback failed, flow=[%s], processor=[%s], duration=[%s], err=[%v]",
			e.FlowName, e.ProcessorName, e.Duration, e.Err, xlog.KV("execution_id", e.ExecutionID))
		return
	}
	xlog.Debug(ctx, "xflow rollback success, flow=[%s], processor=[%s], duration=[%s]",
		e.FlowName, e.ProcessorName, e.Duration, xlog.KV("execution_id", e.ExecutionID))
}

func (logMonitor) OnFlowDone(ctx context.Context, e *FlowEvent) {
	if e.Result.Success() {
		xlog.Info(ctx, "xflow flow done, flow=[%s], duration=[%s], result=[%s]",
			e.FlowName, e.Duration, e.Result, xlog.KV("execution_id", e.ExecutionID))
		return
	}
	xlog.Error(ctx, "xflow flow done, flow=[%s], duration=[%s], result=[%s]",
		e.FlowName, e.Duration, e.Result, xlog.KV("execution_id", e.ExecutionID))
}

var (
	defaultMonitorMu       sync.RWMutex
	defaultMonitorInstance Monitor = logMonitor{}
)

// SetDefaultMonitor 替换 EnableMonitor 使用的全局默认 Monitor，nil 恢复为日志实现
func SetDefaultMonitor(m Monitor) {
	if m == nil {
		m = logMonitor{}
	}
	defaultMonitorMu.Lock()
	defaultMonitorInstance = m
	defaultMonitorMu.Unlock()
}

func GetDefaultMonitor() Monitor {
	defaultMonitorMu.RLock()
	defer defaultMonitorMu.RUnlock()
	return defaultMonitorInstance
}
