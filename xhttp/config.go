package xhttp

const XHttpConfigKey = "XHttp"

type Config struct {
	Timeout             string `mapstructure:"Timeout"`             // 请求整体超时，默认 "60s"
	DialTimeout         string `mapstructure:"DialTimeout"`         // 建连超时，默认 "30s"
	DialKeepAlive       string `mapstructure:"DialKeepAlive"`       // TCP keep-alive 间隔，默认 "30s"
	MaxIdleConns        int    `mapstructure:"MaxIdleConns"`        // 最大空闲连接数，默认 100
	MaxIdleConnsPerHost int    `mapstructure:"MaxIdleConnsPerHost"` // 每个 host 最大空闲连接数，默认 10
	IdleConnTimeout     string `mapstructure:"IdleConnTimeout"`     // 空闲连接超时，默认 "90s"
	RetryCount          int    `mapstructure:"RetryCount"`          // 重试次数，0 表示不重试，默认 0
	RetryWaitTime       string `mapstructure:"RetryWaitTime"`       // 重试等待时间，默认 "100ms"
	RetryMaxWaitTime    string `mapstructure:"RetryMaxWaitTime"`    // 最大重试等待时间，默认 "2s"
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	setIfEmpty(&c.Timeout, "60s")
	setIfEmpty(&c.DialTimeout, "30s")
	setIfEmpty(&c.DialKeepAlive, "30s")
	setIfEmpty(&c.IdleConnTimeout, "90s")
	setIfEmpty(&c.RetryWaitTime, "100ms")
	setIfEmpty(&c.RetryMaxWaitTime, "2s")
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	return c
}

func setIfEmpty(p *string, v string) {
	if *p == "" {
		*p = v
	}
}
