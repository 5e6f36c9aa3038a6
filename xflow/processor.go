package xflow

import "context"

// Dependency 依赖类型，决定 Processor 失败后的处理策略
type Dependency int

const (
	// Strong 强依赖，失败时中断流程并触发回滚
	Strong Dependency = iota
	// Weak 弱依赖，失败时记录并继续执行
	Weak
)

func (d Dependency) String() string {
	switch d {
	case Strong:
		return "strong"
	case Weak:
		return "weak"
	default:
		return "unknown"
	}
}

// Processor 流程中的一个处理步骤，data 在整个流程中共享，由各步骤依次读写
type Processor[T any] interface {
	// Name 处理器名称，用于日志、监控和错误标识，不要求唯一
	Name() string
	// Dependency 依赖类型
	Dependency() Dependency
	// Process 执行处理逻辑
	Process(ctx context.Context, data *T) error
	// Rollback 撤销 Process 产生的影响，强依赖失败时按逆序调用
	Rollback(ctx context.Context, data *T) error
}

// ProcessorBase 可嵌入的默认实现：强依赖，回滚为空操作
//
//	type saveOrder struct{ xflow.ProcessorBase[Order] }
//	func (saveOrder) Name() string { return "save-order" }
//	func (saveOrder) Process(ctx context.Context, o *Order) error { ... }
type ProcessorBase[T any] struct{}

// Dependency 默认强依赖
func (ProcessorBase[T]) Dependency() Dependency { return Strong }

// Rollback 默认无补偿
func (ProcessorBase[T]) Rollback(context.Context, *T) error { return nil }

// WeakProcessorBase 同 ProcessorBase，依赖类型为 Weak
type WeakProcessorBase[T any] struct{}

func (WeakProcessorBase[T]) Dependency() Dependency { return Weak }

func (WeakProcessorBase[T]) Rollback(context.Context, *T) error { return nil }
