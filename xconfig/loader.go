package xconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xiaoshicae/x-one/xutil"
)

const (
	configLocationArgKey = "server.config.location"
	configLocationEnvKey = "SERVER_CONFIG_LOCATION"
	profilesArgKey       = "server.profiles.active"
	profilesEnvKey       = "SERVER_PROFILES_ACTIVE"

	dotEnvFileName = ".env"
)

// configSearchPaths 按优先级排列
var configSearchPaths = []string{
	"./application.yml",
	"./application.yaml",
	"./conf/application.yml",
	"./conf/application.yaml",
	"./config/application.yml",
	"./config/application.yaml",
	"./../conf/application.yml",
	"./../conf/application.yaml",
	"./../config/application.yml",
	"./../config/application.yaml",
}

var placeholderRegex = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// detectConfigLocation 依次从启动参数、环境变量、默认路径中查找
func detectConfigLocation() string {
	if loc, _ := xutil.GetConfigFromArgs(configLocationArgKey); loc != "" {
		xutil.InfoIfEnableDebug("XOne detect config location [%s] from arg", loc)
		return loc
	}
	if loc := os.Getenv(configLocationEnvKey); loc != "" {
		xutil.InfoIfEnableDebug("XOne detect config location [%s] from env", loc)
		return loc
	}
	for _, loc := range configSearchPaths {
		if xutil.FileExist(loc) {
			xutil.InfoIfEnableDebug("XOne detect config location [%s] from search path", loc)
			return loc
		}
	}
	return ""
}

func detectProfilesActive(base *viper.Viper) string {
	if pa, _ := xutil.GetConfigFromArgs(profilesArgKey); pa != "" {
		return pa
	}
	if pa := os.Getenv(profilesEnvKey); pa != "" {
		return pa
	}
	if base != nil {
		return expandString(base.GetString(profilesKey))
	}
	return ""
}

func loadDotEnvIfExist(location string) error {
	p := filepath.Join(filepath.Dir(location), dotEnvFileName)
	if !xutil.FileExist(p) {
		return nil
	}
	return godotenv.Load(p)
}

func parseConfig(location string) (*viper.Viper, error) {
	base, err := readFile(location)
	if err != nil {
		return nil, fmt.Errorf("read config file [%s] failed, err=[%w]", location, err)
	}

	if pa := detectProfilesActive(base); pa != "" {
		profileLocation, err := profileConfigLocation(location, pa)
		if err != nil {
			return nil, err
		}
		profile, err := readFile(profileLocation)
		if err != nil {
			return nil, fmt.Errorf("read profile config file [%s] failed, err=[%w]", profileLocation, err)
		}
		base = mergeProfile(base, profile)
	}

	if base.GetString(serverNameKey) == "" {
		xutil.WarnIfEnableDebug("XOne config Server.Name is empty, many modules use it as service name")
	}

	return expandPlaceholders(base), nil
}

func readFile(location string) (*viper.Viper, error) {
	vp := viper.New()
	vp.SetConfigFile(location)
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}
	return vp, nil
}

// profileConfigLocation conf/application.yml + dev -> conf/application-dev.yml
func profileConfigLocation(location, profile string) (string, error) {
	ext := filepath.Ext(location)
	if ext == "" {
		return "", fmt.Errorf("config file [%s] has no extension", location)
	}
	return strings.TrimSuffix(location, ext) + "-" + profile + ext, nil
}

// mergeProfile profile 中的一级 key 与 Server 下的二级 key 覆盖 base，Server.Profiles 不参与覆盖
func mergeProfile(base, profile *viper.Viper) *viper.Viper {
	merged := base.AllSettings()
	for k, v := range profile.AllSettings() {
		if k != "server" {
			merged[k] = v
			continue
		}
		overrides, ok := v.(map[string]any)
		if !ok {
			continue
		}
		server, _ := merged["server"].(map[string]any)
		if server == nil {
			server = make(map[string]any)
		}
		for sk, sv := range overrides {
			if sk == "profiles" {
				continue
			}
			server[sk] = sv
		}
		merged["server"] = server
	}

	vp := viper.New()
	for k, v := range merged {
		vp.Set(k, v)
	}
	return vp
}

// expandPlaceholders 展开所有字符串值（含嵌套 map 与 slice）中的 ${VAR} / ${VAR:-default}
func expandPlaceholders(vp *viper.Viper) *viper.Viper {
	res := viper.New()
	for k, v := range vp.AllSettings() {
		res.Set(k, expandValue(v))
	}
	return res
}

func expandValue(v any) any {
	switch val := v.(type) {
	case string:
		return expandString(val)
	case map[string]any:
		for k, item := range val {
			val[k] = expandValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = expandValue(item)
		}
		return val
	default:
		return v
	}
}

func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholderRegex.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholderRegex.FindStringSubmatch(m)
		if envVal := os.Getenv(sub[1]); envVal != "" {
			return envVal
		}
		return sub[2]
	})
}

func printFinalConfig(vp *viper.Viper) {
	if !xutil.EnableDebug() {
		return
	}
	fmt.Printf("\n*************** XOne load config ***************\n%s\n************************************************\n\n",
		xutil.ToJsonStringIndent(vp.AllSettings()))
}
