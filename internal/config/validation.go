package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diskcache/diskcache/internal/cache"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入缓存。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if _, err := logrus.ParseLevel(c.Global.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "must be one of panic|fatal|error|warn|info|debug|trace")
	}
	if c.Global.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "must not be negative")
	}
	if c.Global.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "must not be negative")
	}

	if strings.TrimSpace(c.Cache.Prefix) == "" {
		return newFieldError(cacheField("Prefix"), "must not be empty")
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		return newFieldError(cacheField("Path"), "must not be empty")
	}
	if ttl := c.Cache.TTL.DurationValue(); ttl <= 0 && ttl != cache.Forever {
		return newFieldError(cacheField("TTL"), "must be positive or -1 (forever)")
	}

	return nil
}
