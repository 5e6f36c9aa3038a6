package xutil

import "fmt"

// PanicMessage 将 recover() 得到的值转换为可读文本
func PanicMessage(r any) string {
	switch v := r.(type) {
	case nil:
		return "unknown panic"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
