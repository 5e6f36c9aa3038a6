package xconfig

const (
	ServerConfigKey = "Server"

	serverNameKey    = ServerConfigKey + ".Name"
	serverVersionKey = ServerConfigKey + ".Version"
	profilesKey      = ServerConfigKey + ".Profiles.Active"

	defaultServerName    = "unknown.unknown.unknown"
	defaultServerVersion = "v0.0.1"
)

// Server 服务基础信息
type Server struct {
	// Name 服务名
	// required
	Name string `mapstructure:"Name"`

	// Version 服务版本号
	// optional default "v0.0.1"
	Version string `mapstructure:"Version"`

	// Profiles 环境相关配置
	// optional default nil
	Profiles *Profiles `mapstructure:"Profiles"`
}

type Profiles struct {
	// Active 启用的环境，会额外加载 application-<Active>.yml 覆盖基础配置
	Active string `mapstructure:"Active"`
}

func serverConfigMergeDefault(c *Server) *Server {
	if c == nil {
		c = &Server{}
	}
	if c.Name == "" {
		c.Name = defaultServerName
	}
	if c.Version == "" {
		c.Version = defaultServerVersion
	}
	return c
}
