package xflow

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/xiaoshicae/x-one/xutil"
)

const (
	phaseProcess  = "process"
	phaseRollback = "rollback"
)

// PanicError Process 或 Rollback 中发生的 panic
type PanicError struct {
	// Phase "process" 或 "rollback"
	Phase         string
	ProcessorName string
	// Value recover() 得到的原始值
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s [%s]: %s", e.Phase, e.ProcessorName, xutil.PanicMessage(e.Value))
}

// Unwrap panic 值本身是 error 时返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

const unknownProcessorName = "<unknown>"

func safeProcess[T any](ctx context.Context, p Processor[T], data *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(phaseProcess, p, r)
		}
	}()
	return p.Process(ctx, data)
}

func safeRollback[T any](ctx context.Context, p Processor[T], data *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(phaseRollback, p, r)
		}
	}()
	return p.Rollback(ctx, data)
}

func newPanicError[T any](phase string, p Processor[T], r any) *PanicError {
	return &PanicError{Phase: phase, ProcessorName: safeName(p), Value: r, Stack: debug.Stack()}
}

// safeName Name 发生 panic 时返回 "<unknown>"
func safeName[T any](p Processor[T]) (name string) {
	defer func() {
		if recover() != nil {
			name = unknownProcessorName
		}
	}()
	return p.Name()
}

// safeDependency Dependency 发生 panic 时按强依赖处理
func safeDependency[T any](p Processor[T]) (dep Dependency) {
	defer func() {
		if recover() != nil {
			dep = Strong
		}
	}()
	return p.Dependency()
}
