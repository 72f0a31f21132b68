package cache

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// 默认配置，与配置文件中的缺省值保持一致。
const (
	DefaultPath = "cache"
	DefaultTTL  = 3600 * time.Second
)

// Forever 表示条目永不过期，落盘时写入 -1。
const Forever time.Duration = -1

// neverExpires 是 envelope 中永不过期的标记。
const neverExpires int64 = -1

var (
	// ErrPrefixRequired 表示构造缓存时未提供命名空间前缀。
	ErrPrefixRequired = errors.New(`the attribute "prefix" cannot be empty`)
	// ErrNotFound 表示缓存文件不存在（或路径指向目录）。
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidEnvelope 表示文件内容无法解析为 envelope，调用方统一视为未命中。
	ErrInvalidEnvelope = errors.New("invalid cache envelope")
)

// Options 描述一个 Cache 实例的全部可配置项。
type Options struct {
	// Path 为缓存根目录，默认 DefaultPath。
	Path string `mapstructure:"path"`
	// TTL 为未显式指定生命周期时使用的默认值，默认 DefaultTTL；Forever 表示永不过期。
	TTL time.Duration `mapstructure:"ttl"`
	// Prefix 为必填的命名空间前缀。
	Prefix string `mapstructure:"prefix"`

	// Logger 接收被吸收的 I/O 错误，默认使用 logrus 全局实例。
	Logger logrus.FieldLogger `mapstructure:"-"`
	// Now 为时钟，测试中可替换。
	Now func() time.Time `mapstructure:"-"`
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
