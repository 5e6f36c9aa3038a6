package xgorm

const XGormConfigKey = "XGorm"

// Driver 数据库驱动类型
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config XGorm 可以是单个配置，也可以是带 Name 的配置列表
type Config struct {
	Driver                       string `mapstructure:"Driver"`                       // 数据库驱动类型，postgres 或 mysql，默认 "postgres"
	DSN                          string `mapstructure:"DSN"`                          // 数据库连接串，支持 ${VAR} 占位符，必填
	DialTimeout                  string `mapstructure:"DialTimeout"`                  // 建连超时，默认 "500ms"
	ReadTimeout                  string `mapstructure:"ReadTimeout"`                  // 读超时（仅 mysql），默认 "3s"
	WriteTimeout                 string `mapstructure:"WriteTimeout"`                 // 写超时（仅 mysql），默认 "5s"
	MaxOpenConns                 int    `mapstructure:"MaxOpenConns"`                 // 最大连接数，默认 50
	MaxIdleConns                 int    `mapstructure:"MaxIdleConns"`                 // 最大空闲连接数，默认等于 MaxOpenConns
	MaxLifetime                  string `mapstructure:"MaxLifetime"`                  // 连接最长存活时间，默认 "5m"
	MaxIdleTime                  string `mapstructure:"MaxIdleTime"`                  // 空闲连接最长存活时间，默认等于 MaxLifetime
	SlowThreshold                string `mapstructure:"SlowThreshold"`                // 慢查询阈值，开启日志时超过阈值记录 warn，默认 "3s"
	IgnoreRecordNotFoundErrorLog bool   `mapstructure:"IgnoreRecordNotFoundErrorLog"` // 是否忽略 record not found 错误日志，默认 false
	EnableLog                    bool   `mapstructure:"EnableLog"`                    // 是否将 SQL 日志写入 xlog，默认 false
	Name                         string `mapstructure:"Name"`                         // 多个数据库时的唯一名称，列表配置时必填
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Driver == "" {
		c.Driver = string(DriverPostgres)
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "500ms"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "5s"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 50
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.MaxLifetime == "" {
		c.MaxLifetime = "5m"
	}
	if c.MaxIdleTime == "" {
		c.MaxIdleTime = c.MaxLifetime
	}
	if c.SlowThreshold == "" {
		c.SlowThreshold = "3s"
	}
	return c
}
