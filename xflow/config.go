package xflow

import (
	"sync/atomic"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xutil"
)

const XFlowConfigKey = "XFlow"

type Config struct {
	// DisableMonitor 全局关闭监控，优先级高于 EnableMonitor / WithMonitor
	// optional default false
	DisableMonitor bool `mapstructure:"DisableMonitor"`
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	return c
}

var cachedConfig atomic.Pointer[Config]

// GetConfig 首次调用时读取配置并缓存
func GetConfig() *Config {
	if c := cachedConfig.Load(); c != nil {
		return c
	}
	c := &Config{}
	if err := xconfig.UnmarshalConfig(XFlowConfigKey, c); err != nil {
		xutil.WarnIfEnableDebug("XOne xflow unmarshal config failed, use default, err=[%v]", err)
		c = nil
	}
	c = configMergeDefault(c)
	cachedConfig.Store(c)
	return c
}

// ResetConfig 清除缓存，下次 GetConfig 重新读取
func ResetConfig() {
	cachedConfig.Store(nil)
}
