package xtrace

import "github.com/xiaoshicae/x-one/xutil"

const (
	XTraceConfigKey = "XTrace"
)

type Config struct {
	// Enable 是否开启链路追踪，只有明确配置 false 才关闭
	// optional default true
	Enable *bool `mapstructure:"Enable"`

	// Console 是否将 span 打印到控制台
	// optional default false
	Console bool `mapstructure:"Console"`

	// B3 是否同时支持 zipkin B3 头的提取与注入
	// optional default true
	B3 *bool `mapstructure:"B3"`

	// ForwardHeaders 需要沿链路透传的自定义 Header，如 X-Request-ID
	// optional default nil
	ForwardHeaders []string `mapstructure:"ForwardHeaders"`
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Enable == nil {
		c.Enable = xutil.ToPtr(true)
	}
	if c.B3 == nil {
		c.B3 = xutil.ToPtr(true)
	}
	return c
}
