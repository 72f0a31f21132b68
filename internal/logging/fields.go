package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// CacheFields 提供 key/文件路径/命中状态字段，供 CLI 缓存操作日志复用。
func CacheFields(action, key, path string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":    action,
		"key":       key,
		"path":      path,
		"cache_hit": cacheHit,
	}
}
