package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

// EnvPrefix is prepended to every environment override, e.g. ASKAI_STORE_BACKEND
const EnvPrefix = "ASKAI"

// Config is the gateway configuration after file, env and flag merging
type Config struct {
	// Quota is "limit=…,window=…" text, parsed the same way as plugin configuration
	Quota            string `mapstructure:"quota" yaml:"quota"`
	KeyPrefix        string `mapstructure:"key_prefix" yaml:"key_prefix"`
	MaxRetries       int    `mapstructure:"max_retries" yaml:"max_retries"`
	NoExpiry         bool   `mapstructure:"no_expiry" yaml:"no_expiry"`
	DenyMessage      string `mapstructure:"deny_message" yaml:"deny_message"`
	RateLimitHeaders bool   `mapstructure:"rate_limit_headers" yaml:"rate_limit_headers"`

	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Failover FailoverConfig `mapstructure:"failover" yaml:"failover"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Listen            string        `mapstructure:"listen" yaml:"listen"`
	Upstream          string        `mapstructure:"upstream" yaml:"upstream"`
	Path              string        `mapstructure:"path" yaml:"path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// FailoverConfig wraps the primary store with a secondary one when Backend is set
type FailoverConfig struct {
	Backend          string        `mapstructure:"backend" yaml:"backend"`
	FailureThreshold int32         `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `mapstructure:"recovery_timeout" yaml:"recovery_timeout"`
	ProbeInterval    time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
}

// StoreConfig selects the primary backend. Each backend reads its own section.
type StoreConfig struct {
	Backend   string          `mapstructure:"backend" yaml:"backend"`
	Memory    MemoryConfig    `mapstructure:"memory" yaml:"memory"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres" yaml:"postgres"`
	SQLite    SQLConfig       `mapstructure:"sqlite" yaml:"sqlite"`
	MySQL     SQLConfig       `mapstructure:"mysql" yaml:"mysql"`
	Etcd      EtcdConfig      `mapstructure:"etcd" yaml:"etcd"`
	Consul    ConsulConfig    `mapstructure:"consul" yaml:"consul"`
	Zookeeper ZookeeperConfig `mapstructure:"zookeeper" yaml:"zookeeper"`
}

type MemoryConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Table    string `mapstructure:"table" yaml:"table"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

type SQLConfig struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Table    string `mapstructure:"table" yaml:"table"`
	MaxConns int    `mapstructure:"max_conns" yaml:"max_conns"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints" yaml:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	Username    string        `mapstructure:"username" yaml:"username"`
	Password    string        `mapstructure:"password" yaml:"password"`
	Prefix      string        `mapstructure:"prefix" yaml:"prefix"`
}

type ConsulConfig struct {
	Address    string `mapstructure:"address" yaml:"address"`
	Token      string `mapstructure:"token" yaml:"token"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix"`
}

type ZookeeperConfig struct {
	Servers        []string      `mapstructure:"servers" yaml:"servers"`
	SessionTimeout time.Duration `mapstructure:"session_timeout" yaml:"session_timeout"`
	Root           string        `mapstructure:"root" yaml:"root"`
}

// setDefaults registers every key so that env overrides reach AllSettings
func setDefaults(v *viper.Viper) {
	v.SetDefault("quota", fixedwindow.DefaultConfig().String())
	v.SetDefault("key_prefix", fixedwindow.DefaultKeyPrefix)
	v.SetDefault("max_retries", strategies.DefaultMaxRetries)
	v.SetDefault("no_expiry", false)
	v.SetDefault("deny_message", "")
	v.SetDefault("rate_limit_headers", false)

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.upstream", "")
	v.SetDefault("server.path", "/api/askai")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.memory.cleanup_interval", "1m")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.pool_size", 0)
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.table", "")
	v.SetDefault("store.postgres.max_conns", 0)
	v.SetDefault("store.sqlite.dsn", "askai.db")
	v.SetDefault("store.sqlite.table", "")
	v.SetDefault("store.sqlite.max_conns", 0)
	v.SetDefault("store.mysql.dsn", "")
	v.SetDefault("store.mysql.table", "")
	v.SetDefault("store.mysql.max_conns", 0)
	v.SetDefault("store.etcd.endpoints", "localhost:2379")
	v.SetDefault("store.etcd.dial_timeout", "5s")
	v.SetDefault("store.etcd.username", "")
	v.SetDefault("store.etcd.password", "")
	v.SetDefault("store.etcd.prefix", "")
	v.SetDefault("store.consul.address", "")
	v.SetDefault("store.consul.token", "")
	v.SetDefault("store.consul.datacenter", "")
	v.SetDefault("store.consul.prefix", "")
	v.SetDefault("store.zookeeper.servers", "localhost:2181")
	v.SetDefault("store.zookeeper.session_timeout", "10s")
	v.SetDefault("store.zookeeper.root", "")

	v.SetDefault("failover.backend", "")
	v.SetDefault("failover.failure_threshold", 5)
	v.SetDefault("failover.recovery_timeout", "30s")
	v.SetDefault("failover.probe_interval", "10s")
	v.SetDefault("failover.probe_timeout", "2s")
}

// newViper returns a viper instance with defaults and env binding
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile loads path into v. An empty path is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// decodeConfig unmarshals the merged settings of v
func decodeConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// redacted returns a copy with secrets masked, for printing
func (c Config) redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	c.Store.Redis.Password = mask(c.Store.Redis.Password)
	c.Store.Etcd.Password = mask(c.Store.Etcd.Password)
	c.Store.Consul.Token = mask(c.Store.Consul.Token)
	c.Store.Postgres.DSN = maskDSN(c.Store.Postgres.DSN)
	c.Store.MySQL.DSN = maskDSN(c.Store.MySQL.DSN)
	return c
}

// maskDSN hides the password part of user:password@ in a DSN or URL
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	start := strings.Index(creds, "://") + 1
	if start > 0 {
		start += 2
	}
	colon := strings.Index(creds[start:], ":")
	if colon < 0 {
		return dsn
	}
	return creds[:start+colon+1] + "****" + dsn[at:]
}
