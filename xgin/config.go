package xgin

import "github.com/xiaoshicae/x-one/xconfig"

const XGinConfigKey = "XGin"

type Config struct {
	// Host 服务监听的 host
	// optional default "0.0.0.0"
	Host string `mapstructure:"Host"`

	// Port 服务端口号
	// optional default 8000
	Port int `mapstructure:"Port"`

	// UseHttp2 是否以 h2c 方式支持 http2
	// optional default false
	UseHttp2 bool `mapstructure:"UseHttp2"`
}

// GetConfig 读取 XGin 配置，未配置时使用默认值
func GetConfig() *Config {
	c := &Config{}
	_ = xconfig.UnmarshalConfig(XGinConfigKey, c)
	return configMergeDefault(c)
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port <= 0 {
		c.Port = 8000
	}
	return c
}
