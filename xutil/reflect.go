package xutil

import (
	"reflect"
	"runtime"
	"strings"
)

// IsSlice v 是否为 slice
func IsSlice(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Slice
}

// GetFuncName 返回函数名（不含包路径），非函数返回空串
func GetFuncName(fc any) string {
	_, _, name := GetFuncInfo(fc)
	return name
}

// GetFuncInfo 返回函数定义所在文件、行号和名称，非函数或 nil 时返回零值
func GetFuncInfo(fc any) (file string, line int, name string) {
	if fc == nil {
		return "", 0, ""
	}
	v := reflect.ValueOf(fc)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", 0, ""
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "", 0, ""
	}

	fullName := fn.Name()
	if idx := strings.LastIndex(fullName, "/"); idx != -1 {
		fullName = fullName[idx+1:]
	}
	_, name, found := strings.Cut(fullName, ".")
	if !found {
		return "", 0, ""
	}
	file, line = fn.FileLine(v.Pointer())
	return file, line, name
}
