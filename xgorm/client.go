// Package xgorm 按配置初始化 gorm 连接池（postgres / mysql），并提供可加入 xflow 流程的事务步骤 TxStep
package xgorm

import (
	"context"
	"errors"
	"sync"
	"time"

	stdmysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/xiaoshicae/x-one/xconfig"
	"github.com/xiaoshicae/x-one/xerror"
	"github.com/xiaoshicae/x-one/xhook"
	"github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xtrace"
	"github.com/xiaoshicae/x-one/xutil"
)

var (
	mu        sync.RWMutex
	clients   = make(map[string]*gorm.DB)
	defaultDB *gorm.DB
)

func init() {
	xhook.BeforeStart(initXGorm, xhook.Order(30))
	xhook.BeforeStop(closeXGorm, xhook.Order(400))
}

// C 按名称获取 gorm client，不传名称时返回第一个；推荐使用 CWithCtx 以传递 trace
func C(name ...string) *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	if len(name) == 0 || name[0] == "" {
		if defaultDB == nil {
			xlog.Error(context.Background(), "xgorm default client not found, please check config %s", XGormConfigKey)
		}
		return defaultDB
	}
	if db, ok := clients[name[0]]; ok {
		return db
	}
	xlog.Error(context.Background(), "xgorm client not found, name=[%s], please check config %s", name[0], XGormConfigKey)
	return nil
}

// CWithCtx 绑定 ctx 的 gorm client，不存在时返回 nil
func CWithCtx(ctx context.Context, name ...string) *gorm.DB {
	db := C(name...)
	if db == nil {
		return nil
	}
	return db.WithContext(ctx)
}

func initXGorm() error {
	if !xconfig.ContainKey(XGormConfigKey) {
		xutil.InfoIfEnableDebug("XOne xgorm config [%s] not found, skip", XGormConfigKey)
		return nil
	}

	configs, err := getConfigs()
	if err != nil {
		return xerror.Newf("xgorm", "init", "get config failed, err=[%w]", err)
	}

	opened := make([]*gorm.DB, 0, len(configs))
	for _, c := range configs {
		db, err := newClient(c)
		if err != nil {
			_ = closeAll(opened)
			return xerror.Newf("xgorm", "init", "create client [%s] failed, err=[%w]", c.Name, err)
		}
		opened = append(opened, db)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, c := range configs {
		if c.Name != "" {
			clients[c.Name] = opened[i]
		}
	}
	defaultDB = opened[0]
	return nil
}

func getConfigs() ([]*Config, error) {
	var configs []*Config
	if xutil.IsSlice(xconfig.GetConfig(XGormConfigKey)) {
		if err := xconfig.UnmarshalConfig(XGormConfigKey, &configs); err != nil {
			return nil, err
		}
		if len(configs) == 0 {
			return nil, xerror.Newf("xgorm", "config", "%s is an empty list", XGormConfigKey)
		}
	} else {
		c := &Config{}
		if err := xconfig.UnmarshalConfig(XGormConfigKey, c); err != nil {
			return nil, err
		}
		configs = []*Config{c}
	}

	multi := len(configs) > 1
	for i, c := range configs {
		c = configMergeDefault(c)
		configs[i] = c
		if c.DSN == "" {
			return nil, xerror.Newf("xgorm", "config", "%s[%d].DSN can not be empty", XGormConfigKey, i)
		}
		if multi && c.Name == "" {
			return nil, xerror.Newf("xgorm", "config", "%s[%d].Name can not be empty", XGormConfigKey, i)
		}
	}
	return configs, nil
}

func newClient(c *Config) (*gorm.DB, error) {
	dialector, err := resolveDialector(c)
	if err != nil {
		return nil, err
	}

	gc := &gorm.Config{}
	if c.EnableLog {
		gc.Logger = newGormLogger(c)
	}
	db, err := gorm.Open(dialector, gc)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(xutil.ToDuration(c.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(xutil.ToDuration(c.MaxIdleTime))

	ping := func() error { return sqlDB.PingContext(context.Background()) }
	if err := xutil.Retry(ping, 3, time.Second); err != nil {
		_ = sqlDB.Close()
		return nil, xerror.Newf("xgorm", "ping", "ping [%s] failed, err=[%w]", c.Driver, err)
	}

	if xtrace.EnableTrace() {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return db, nil
}

func resolveDialector(c *Config) (gorm.Dialector, error) {
	if c == nil || c.DSN == "" {
		return nil, xerror.Newf("xgorm", "dialector", "dsn can not be empty")
	}
	switch Driver(c.Driver) {
	case DriverMySQL:
		dsn, err := resolveMySQLDSN(c)
		if err != nil {
			return nil, xerror.Newf("xgorm", "dialector", "parse mysql dsn failed, err=[%w]", err)
		}
		return mysql.Open(dsn), nil
	case DriverPostgres, "":
		return postgres.Open(c.DSN), nil
	default:
		return nil, xerror.Newf("xgorm", "dialector", "unsupported driver [%s], supported: mysql, postgres", c.Driver)
	}
}

// resolveMySQLDSN DSN 中未指定的超时使用配置值
func resolveMySQLDSN(c *Config) (string, error) {
	mc, err := stdmysql.ParseDSN(c.DSN)
	if err != nil {
		return "", err
	}
	if mc.Timeout == 0 {
		mc.Timeout = xutil.ToDuration(c.DialTimeout)
	}
	if mc.ReadTimeout == 0 {
		mc.ReadTimeout = xutil.ToDuration(c.ReadTimeout)
	}
	if mc.WriteTimeout == 0 {
		mc.WriteTimeout = xutil.ToDuration(c.WriteTimeout)
	}
	return mc.FormatDSN(), nil
}

func closeXGorm() error {
	mu.Lock()
	dbs := make([]*gorm.DB, 0, len(clients)+1)
	seen := make(map[*gorm.DB]struct{}, len(clients)+1)
	for _, db := range append([]*gorm.DB{defaultDB}, mapValues(clients)...) {
		if db == nil {
			continue
		}
		if _, ok := seen[db]; ok {
			continue
		}
		seen[db] = struct{}{}
		dbs = append(dbs, db)
	}
	clear(clients)
	defaultDB = nil
	mu.Unlock()

	if err := closeAll(dbs); err != nil {
		return xerror.New("xgorm", "close", err)
	}
	return nil
}

func closeAll(dbs []*gorm.DB) error {
	var errs []error
	for _, db := range dbs {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func mapValues(m map[string]*gorm.DB) []*gorm.DB {
	res := make([]*gorm.DB, 0, len(m))
	for _, v := range m {
		res = append(res, v)
	}
	return res
}
