package xutil

import "encoding/json"

// ToJsonString 序列化失败时返回空串，仅用于日志输出
func ToJsonString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// ToJsonStringIndent 带缩进的 ToJsonString
func ToJsonStringIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		ErrorIfEnableDebug("XOne ToJsonStringIndent failed, err=[%v]", err)
		return ""
	}
	return string(b)
}
