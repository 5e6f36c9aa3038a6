package xcache

const XCacheConfigKey = "XCache"

const (
	defaultNumCounters = 1_000_000
	defaultMaxCost     = 100_000
	defaultBufferItems = 64
	defaultTTL         = "5m"
)

// Config XCache 可以是单个配置，也可以是带 Name 的配置列表
type Config struct {
	NumCounters int64  `mapstructure:"NumCounters"` // 频率统计的 key 数量，建议为预期条目数的 10 倍，默认 1000000
	MaxCost     int64  `mapstructure:"MaxCost"`     // 最大总成本，每个条目 cost=1 时即最大条目数，默认 100000
	BufferItems int64  `mapstructure:"BufferItems"` // Get 缓冲区大小，默认 64
	DefaultTTL  string `mapstructure:"DefaultTTL"`  // 默认过期时间，支持 "1d"，默认 "5m"
	Name        string `mapstructure:"Name"`        // 多个缓存时的唯一名称，列表配置时必填
}

func configMergeDefault(c *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	if c.NumCounters <= 0 {
		c.NumCounters = defaultNumCounters
	}
	if c.MaxCost <= 0 {
		c.MaxCost = defaultMaxCost
	}
	if c.BufferItems <= 0 {
		c.BufferItems = defaultBufferItems
	}
	if c.DefaultTTL == "" {
		c.DefaultTTL = defaultTTL
	}
	return c
}
