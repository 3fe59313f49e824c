package cli

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/techradar/pkg/cache"
	"github.com/matzehuels/techradar/pkg/errors"
	"github.com/matzehuels/techradar/pkg/pipeline"
	"github.com/matzehuels/techradar/pkg/session"
	"github.com/matzehuels/techradar/pkg/source/mongo"
)

// envPrefix is the prefix of every environment override, so that the key
// "redis.addr" resolves to TECHRADAR_REDIS_ADDR.
const envPrefix = "TECHRADAR"

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Settings are the process settings shared by all commands. They are
// layered as defaults, config file, environment, then flags.
type Settings struct {
	Seed   uint64            `mapstructure:"seed"`
	Budget time.Duration     `mapstructure:"budget"`
	Cache  CacheSettings     `mapstructure:"cache"`
	Redis  cache.RedisConfig `mapstructure:"redis"`
	Mongo  mongo.Config      `mapstructure:"mongo"`
	Server ServerSettings    `mapstructure:"server"`
}

// CacheSettings selects the cache backend.
type CacheSettings struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// ServerSettings configures the serve command.
type ServerSettings struct {
	Addr       string        `mapstructure:"addr"`
	Watch      bool          `mapstructure:"watch"`
	Metrics    bool          `mapstructure:"metrics"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// newViper builds a viper instance with the defaults and env binding of
// every setting. Defaults must cover every key for AutomaticEnv to apply
// during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("seed", pipeline.DefaultSeed)
	v.SetDefault("budget", pipeline.DefaultBudget)
	v.SetDefault("cache.backend", cacheFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "techradar:")
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", mongo.DefaultDatabase)
	v.SetDefault("mongo.collection", mongo.DefaultCollection)
	v.SetDefault("mongo.published_only", false)
	v.SetDefault("mongo.timeout", mongo.DefaultTimeout)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.watch", false)
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.session_ttl", session.DefaultTTL)
	return v
}

// readConfig merges the config file at path, if any.
func readConfig(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return nil
}

// bindFlags binds command flags to setting keys. Binding happens when the
// command runs, since several commands share keys such as "seed".
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// loadSettings unmarshals and validates the merged settings.
func loadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode settings")
	}
	switch s.Cache.Backend {
	case cacheFile, cacheRedis, cacheNone:
	default:
		return s, errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend %q (must be one of: file, redis, none)", s.Cache.Backend)
	}
	return s, nil
}
