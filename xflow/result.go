package xflow

import (
	"errors"
	"fmt"
	"strings"
)

// StepError 单个 Processor 的失败
type StepError struct {
	ProcessorName string
	Dependency    Dependency
	Err           error
}

func (se *StepError) Error() string {
	return fmt.Sprintf("step [%s] (%s) failed: %v", se.ProcessorName, se.Dependency, se.Err)
}

func (se *StepError) Unwrap() error {
	return se.Err
}

// ExecuteResult 一次 Execute 的结果，Rolled == (Err != nil)
type ExecuteResult struct {
	// Err 强依赖失败，nil 表示流程成功
	Err *StepError
	// SkippedErrors 弱依赖失败，按发生顺序
	SkippedErrors []*StepError
	// RollbackErrors 回滚失败，按回滚顺序
	RollbackErrors []*StepError
	// Rolled 是否执行了回滚
	Rolled bool
}

// Success 没有强依赖失败即为成功，弱依赖失败不影响
func (r *ExecuteResult) Success() bool {
	return r.Err == nil
}

// HasSkippedErrors 是否有被跳过的弱依赖失败
func (r *ExecuteResult) HasSkippedErrors() bool {
	return len(r.SkippedErrors) > 0
}

// HasRollbackErrors 回滚过程中是否有 Processor 失败
func (r *ExecuteResult) HasRollbackErrors() bool {
	return len(r.RollbackErrors) > 0
}

// String 一行摘要，如 "flow failed: step [b] (strong) failed: boom, 1 skipped error(s), rolled back with 1 error(s)"
func (r *ExecuteResult) String() string {
	var sb strings.Builder
	if r.Err == nil {
		sb.WriteString("flow succeeded")
	} else {
		sb.WriteString("flow failed: ")
		sb.WriteString(r.Err.Error())
	}
	if n := len(r.SkippedErrors); n > 0 {
		fmt.Fprintf(&sb, ", %d skipped error(s)", n)
	}
	if r.Rolled {
		sb.WriteString(", rolled back")
		if n := len(r.RollbackErrors); n > 0 {
			fmt.Fprintf(&sb, " with %d error(s)", n)
		}
	}
	return sb.String()
}

// Error 将主错误、弱依赖错误和回滚错误合并为一个 error，全部为空时返回 nil
func (r *ExecuteResult) Error() error {
	errs := make([]error, 0, 1+len(r.SkippedErrors)+len(r.RollbackErrors))
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, se := range r.SkippedErrors {
		errs = append(errs, se)
	}
	for _, se := range r.RollbackErrors {
		errs = append(errs, se)
	}
	return errors.Join(errs...)
}
