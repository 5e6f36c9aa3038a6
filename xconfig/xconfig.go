// Package xconfig 基于 viper 加载 application.yml，支持 profiles 覆盖、.env 与 ${VAR:-default} 占位符
package xconfig

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"

	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xutil"
)

var current atomic.Pointer[viper.Viper]

func init() {
	xhook.BeforeStart(initXConfig, xhook.Order(1))
}

func initXConfig() error {
	location := detectConfigLocation()
	if location == "" {
		xutil.WarnIfEnableDebug("XOne xconfig config file not found, use empty config")
		return nil
	}
	return LoadFile(location)
}

// LoadFile 从指定路径加载配置并替换当前配置
func LoadFile(location string) error {
	if err := loadDotEnvIfExist(location); err != nil {
		return xerror.Newf("xconfig", "init", "load .env failed, err=[%w]", err)
	}
	vp, err := parseConfig(location)
	if err != nil {
		return xerror.New("xconfig", "init", err)
	}
	printFinalConfig(vp)
	current.Store(vp)
	return nil
}

// Reset 清空当前配置，主要用于测试
func Reset() {
	current.Store(nil)
}

func getViper() *viper.Viper {
	if vp := current.Load(); vp != nil {
		return vp
	}
	return emptyViper
}

var emptyViper = viper.New()

// UnmarshalConfig 将 key 下的配置解析到 conf（必须为指针）
func UnmarshalConfig(key string, conf any) error {
	if key == "" {
		return fmt.Errorf("param key is empty")
	}
	if conf == nil || reflect.TypeOf(conf).Kind() != reflect.Ptr {
		return fmt.Errorf("param conf must be a non-nil pointer")
	}
	return getViper().UnmarshalKey(key, conf)
}

func GetConfig(key string) any {
	return getViper().Get(key)
}

func ContainKey(key string) bool {
	return getViper().IsSet(key)
}

func GetString(key string) string {
	return getViper().GetString(key)
}

func GetBool(key string) bool {
	return getViper().GetBool(key)
}

func GetInt(key string) int {
	return getViper().GetInt(key)
}

func GetInt64(key string) int64 {
	return getViper().GetInt64(key)
}

func GetFloat64(key string) float64 {
	return getViper().GetFloat64(key)
}

// GetDuration 支持 "1d2h" 形式的天单位
func GetDuration(key string) time.Duration {
	return xutil.ToDuration(getViper().Get(key))
}

func GetStringSlice(key string) []string {
	return getViper().GetStringSlice(key)
}

func GetIntSlice(key string) []int {
	return getViper().GetIntSlice(key)
}

// GetServerConfig 返回合并默认值后的 Server 配置
func GetServerConfig() *Server {
	c := &Server{}
	if err := UnmarshalConfig(ServerConfigKey, c); err != nil {
		xutil.WarnIfEnableDebug("XOne xconfig unmarshal Server failed, err=[%v]", err)
	}
	return serverConfigMergeDefault(c)
}

// GetServerName 未配置时返回默认值
func GetServerName() string {
	return xutil.GetOrDefault(GetRawServerName(), defaultServerName)
}

// GetRawServerName 未配置时返回空串
func GetRawServerName() string {
	return getViper().GetString(serverNameKey)
}

func GetServerVersion() string {
	return xutil.GetOrDefault(getViper().GetString(serverVersionKey), defaultServerVersion)
}
