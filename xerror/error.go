// Package xerror 提供 XOne 框架统一错误类型
package xerror

import (
	"errors"
	"fmt"
)

// XOneError 框架统一错误，Module 标识出错模块，Op 标识出错操作
type XOneError struct {
	Module string // 模块名，如 "xconfig", "xflow"
	Op     string // 操作名，如 "init", "process"
	Err    error
}

func (e *XOneError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("XOne %s %s failed", e.Module, e.Op)
	}
	return fmt.Sprintf("XOne %s %s failed, err=[%v]", e.Module, e.Op, e.Err)
}

// Unwrap 支持 errors.Is / errors.As
func (e *XOneError) Unwrap() error {
	return e.Err
}

// New 包装已有错误
func New(module, op string, err error) *XOneError {
	return &XOneError{Module: module, Op: op, Err: err}
}

// Newf 以格式化消息创建错误，支持 %w
func Newf(module, op, format string, args ...any) *XOneError {
	return &XOneError{Module: module, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is 判断 err 链中是否存在指定模块的 XOneError
func Is(err error, module string) bool {
	return Module(err) == module && module != ""
}

// IsOp 判断 err 链中是否存在指定模块、指定操作的 XOneError
func IsOp(err error, module, op string) bool {
	var xe *XOneError
	if !errors.As(err, &xe) {
		return false
	}
	return xe.Module == module && xe.Op == op
}

// Module 返回 err 链中第一个 XOneError 的模块名，不存在时返回空串
func Module(err error) string {
	var xe *XOneError
	if errors.As(err, &xe) {
		return xe.Module
	}
	return ""
}
