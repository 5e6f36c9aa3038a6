package xlog

const (
	XLogConfigKey = "XLog"
)

type Config struct {
	Level              string `mapstructure:"Level"`              // 日志级别，默认 "info"
	Name               string `mapstructure:"Name"`               // 日志文件名称，默认 "app"
	Path               string `mapstructure:"Path"`               // 日志文件夹路径，默认 "./log"
	Console            bool   `mapstructure:"Console"`            // 是否同时打印到控制台，默认 false
	ConsoleFormatIsRaw bool   `mapstructure:"ConsoleFormatIsRaw"` // 控制台是否直接打印 json，为 false 时打印 level+time+file+traceid+内容，默认 false
	MaxAge             string `mapstructure:"MaxAge"`             // 日志保存最大时间，默认 "7d"
	RotateTime         string `mapstructure:"RotateTime"`         // 日志切割时长，默认 "1d"
	Timezone           string `mapstructure:"Timezone"`           // 日志时间的时区，默认 "Asia/Shanghai"
	Async              bool   `mapstructure:"Async"`              // 是否异步写文件，默认 false
	AsyncBufferSize    int    `mapstructure:"AsyncBufferSize"`    // 异步写入队列长度，默认 4096
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Name == "" {
		c.Name = "app"
	}
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Path == "" {
		c.Path = "./log"
	}
	if c.MaxAge == "" {
		c.MaxAge = "7d"
	}
	if c.RotateTime == "" {
		c.RotateTime = "1d"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Shanghai"
	}
	if c.AsyncBufferSize <= 0 {
		c.AsyncBufferSize = defaultAsyncBufferSize
	}
	return c
}
