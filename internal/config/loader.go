package config

import (
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/diskcache/diskcache/internal/cache"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。未知字段直接报错。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	hook := cache.TTLDecodeHook(reflect.TypeOf(Duration(0)))
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook), rejectUnused); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyCacheDefaults(&cfg.Cache)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}
	cfg.Cache.Path = absPath

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Cache.Path", cache.DefaultPath)
	v.SetDefault("Cache.TTL", int(cache.DefaultTTL.Seconds()))
}

func applyCacheDefaults(c *CacheConfig) {
	if c.Path == "" {
		c.Path = cache.DefaultPath
	}
	if c.TTL.DurationValue() == 0 {
		c.TTL = Duration(cache.DefaultTTL)
	}
}

// rejectUnused 让 mapstructure 对配置中未识别的字段报错，避免拼写错误被静默忽略。
func rejectUnused(dc *mapstructure.DecoderConfig) {
	dc.ErrorUnused = true
}
