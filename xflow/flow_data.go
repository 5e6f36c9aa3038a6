package xflow

// FlowData 常用的流程数据容器：Request 为入参，Response 由各 Processor 填充，
// extra 存放 Processor 之间传递的临时数据。Process 写入的 extra 可在对应 Rollback 中
// 读取并 Del，回滚后不留下半成品状态
type FlowData[Req, Resp any] struct {
	Request  Req
	Response Resp
	extra    map[string]any
}

// NewFlowData 以 req 创建 FlowData
func NewFlowData[Req, Resp any](req Req) *FlowData[Req, Resp] {
	return &FlowData[Req, Resp]{Request: req}
}

// Set 存储临时数据，extra 首次写入时创建
func (d *FlowData[Req, Resp]) Set(key string, val any) {
	if d.extra == nil {
		d.extra = make(map[string]any)
	}
	d.extra[key] = val
}

// Get 读取临时数据，不存在时返回 nil 和 false
func (d *FlowData[Req, Resp]) Get(key string) (any, bool) {
	v, ok := d.extra[key]
	return v, ok
}

// Del 删除临时数据，常用于 Rollback
func (d *FlowData[Req, Resp]) Del(key string) {
	delete(d.extra, key)
}

// Key 类型安全的临时数据键
type Key[V any] struct {
	name string
}

// NewKey 创建类型为 V 的临时数据键
func NewKey[V any](name string) Key[V] {
	return Key[V]{name: name}
}

// Name 键名，即 Set/Get 使用的字符串 key
func (k Key[V]) Name() string {
	return k.name
}

// SetExtra 以类型安全的方式存储临时数据
func SetExtra[V, Req, Resp any](d *FlowData[Req, Resp], key Key[V], val V) {
	d.Set(key.name, val)
}

// GetExtra 键不存在或类型不匹配时返回零值和 false
func GetExtra[V, Req, Resp any](d *FlowData[Req, Resp], key Key[V]) (V, bool) {
	v, ok := d.Get(key.name)
	if !ok {
		var zero V
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}
