package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diskcache/diskcache/internal/cache"
)

// Duration 兼容纯秒数、Go Duration 字符串以及 "1d"、"2w" 等带天/周单位的写法。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别 "30s"、"5m"、"1d" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	ttl, err := cache.ParseTTL(string(text))
	if err != nil {
		return err
	}
	*d = Duration(ttl)
	return nil
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述日志等进程级行为。
type GlobalConfig struct {
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// CacheConfig 对应 [Cache] 段，字段与 cache.Options 一一对应。
type CacheConfig struct {
	Path   string   `mapstructure:"Path"`
	TTL    Duration `mapstructure:"TTL"`
	Prefix string   `mapstructure:"Prefix"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Cache  CacheConfig  `mapstructure:"Cache"`
}

// Options 将 [Cache] 段转换为 cache.Options，并注入日志实例。
func (c CacheConfig) Options(logger logrus.FieldLogger) cache.Options {
	return cache.Options{
		Path:   c.Path,
		TTL:    c.TTL.DurationValue(),
		Prefix: c.Prefix,
		Logger: logger,
	}
}

// TTLLabel 输出便于日志阅读的 TTL，永不过期时为 "forever"。
func (c CacheConfig) TTLLabel() string {
	if c.TTL.DurationValue() == cache.Forever {
		return "forever"
	}
	return fmt.Sprint(c.TTL.DurationValue())
}
