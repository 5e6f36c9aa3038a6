package xflow

import "context"

// StepFunc Process / Rollback 的函数形式
type StepFunc[T any] func(ctx context.Context, data *T) error

// Step 以闭包方式定义的 Processor，未设置的函数视为成功的空操作
type Step[T any] struct {
	name       string
	dependency Dependency
	process    StepFunc[T]
	rollback   StepFunc[T]
}

// NewStep 创建强依赖 Step
func NewStep[T any](name string) *Step[T] {
	return &Step[T]{name: name, dependency: Strong}
}

// NewWeakStep 创建弱依赖 Step
func NewWeakStep[T any](name string) *Step[T] {
	return &Step[T]{name: name, dependency: Weak}
}

// WithProcess 设置正向执行逻辑
func (s *Step[T]) WithProcess(fn StepFunc[T]) *Step[T] {
	s.process = fn
	return s
}

// WithRollback 设置补偿逻辑，流程失败回滚时调用
func (s *Step[T]) WithRollback(fn StepFunc[T]) *Step[T] {
	s.rollback = fn
	return s
}

// Name 步骤名称
func (s *Step[T]) Name() string { return s.name }

// Dependency 依赖类型，由构造函数决定
func (s *Step[T]) Dependency() Dependency { return s.dependency }

// Process 执行正向逻辑，未设置时直接成功
func (s *Step[T]) Process(ctx context.Context, data *T) error {
	if s.process == nil {
		return nil
	}
	return s.process(ctx, data)
}

// Rollback 执行补偿逻辑，未设置时直接成功
func (s *Step[T]) Rollback(ctx context.Context, data *T) error {
	if s.rollback == nil {
		return nil
	}
	return s.rollback(ctx, data)
}
