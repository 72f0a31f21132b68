package cache

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache 是以文件系统为后端的 key/value 缓存，所有方法都在调用方 goroutine 中同步执行。
type Cache struct {
	resolver KeyPathResolver
	store    *fileStore
	flights  singleflight.Group

	root   string
	prefix string
	ttl    time.Duration
	logger logrus.FieldLogger
	now    func() time.Time
}

// New 根据 opts 构造缓存实例，Prefix 为空时返回 ErrPrefixRequired。
func New(opts Options) (*Cache, error) {
	if opts.Prefix == "" {
		return nil, ErrPrefixRequired
	}
	opts = opts.withDefaults()

	resolver := NewKeyPathResolver(opts.Path, opts.Prefix)
	return &Cache{
		resolver: resolver,
		store:    newFileStore(),
		root:     resolver.root,
		prefix:   opts.Prefix,
		ttl:      opts.TTL,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// Root 返回缓存根目录。
func (c *Cache) Root() string { return c.root }

// Prefix 返回命名空间前缀。
func (c *Cache) Prefix() string { return c.prefix }

// TTL 返回默认生命周期。
func (c *Cache) TTL() time.Duration { return c.ttl }

// Path 返回 key 对应的缓存文件路径。
func (c *Cache) Path(key string) string { return c.resolver.Resolve(key) }

func (c *Cache) String() string {
	return fmt.Sprintf("path: %s, ttl: %s, prefix: %s", c.root, c.ttl, c.prefix)
}

// Has 仅判断缓存文件是否存在，不校验内容与过期时间。
func (c *Cache) Has(key string) bool {
	return c.store.exists(c.Path(key))
}

// Put 以默认 TTL 写入 value。
func (c *Cache) Put(key string, value any) bool {
	return c.PutFor(key, value, c.ttl)
}

// PutFor 以指定生命周期写入 value。ttl 为 Forever 时永不过期；
// 为 0 或其它负值时写入当前时间：同一秒内读取仍命中，下一秒起才未命中。
func (c *Cache) PutFor(key string, value any, ttl time.Duration) bool {
	if err := c.put(key, value, ttl); err != nil {
		c.logger.WithFields(c.fields("put", key)).WithError(err).Warn("cache write failed")
		return false
	}
	return true
}

func (c *Cache) put(key string, value any, ttl time.Duration) error {
	data, err := EncodeEnvelope(c.expiresAt(ttl), value)
	if err != nil {
		return err
	}
	return c.store.write(c.resolver.Dir(key), c.Path(key), data)
}

func (c *Cache) expiresAt(ttl time.Duration) int64 {
	if ttl == Forever {
		return neverExpires
	}
	now := c.now().Unix()
	if ttl <= 0 {
		return now
	}
	return now + int64((ttl+time.Second-1)/time.Second)
}

// Get 返回未过期的缓存值；未命中、损坏或过期时返回 (nil, false)。
func (c *Cache) Get(key string) (any, bool) {
	env, ok := c.live(key)
	if !ok {
		return nil, false
	}
	value, err := decodeValue(env.Value)
	if err != nil {
		c.logger.WithFields(c.fields("get", key)).WithError(err).Debug("cache value undecodable")
		return nil, false
	}
	return value, true
}

// GetOr 在未命中时以默认 TTL 写入 fallback 并返回它。
func (c *Cache) GetOr(key string, fallback any) any {
	if value, ok := c.Get(key); ok {
		return value
	}
	c.PutFor(key, fallback, c.ttl)
	return fallback
}

// GetOrCompute 在未命中时调用 producer，以默认 TTL 写入其结果并返回。
func (c *Cache) GetOrCompute(key string, producer func() any) any {
	return c.Remember(key, c.ttl, producer)
}

// Remember 与 GetOrCompute 相同，但填充时使用显式的 ttl。总是返回一个值。
func (c *Cache) Remember(key string, ttl time.Duration, producer func() any) any {
	if value, ok := c.Get(key); ok {
		return value
	}
	value, _ := fill(c, key, ttl, func() (any, error) { return producer(), nil })
	return value
}

// Forever 以永不过期的方式写入 value；写入失败时返回 (nil, false)。
func (c *Cache) Forever(key string, value any) (any, bool) {
	if !c.PutFor(key, value, Forever) {
		return nil, false
	}
	return value, true
}

// ForeverCompute 调用 producer 后以永不过期的方式写入其结果。
func (c *Cache) ForeverCompute(key string, producer func() any) (any, bool) {
	return c.Forever(key, producer())
}

// IsExpired 在条目不存在、损坏或已过期时返回 true；永不过期的条目返回 false。
func (c *Cache) IsExpired(key string) bool {
	_, ok := c.live(key)
	return !ok
}

// Pull 读取后删除条目；不存在或已过期时返回 (nil, false)。
func (c *Cache) Pull(key string) (any, bool) {
	if !c.Has(key) {
		return nil, false
	}
	value, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	c.Forget(key)
	return value, true
}

// Forget 删除条目，不存在时为 no-op。
func (c *Cache) Forget(key string) {
	if err := c.store.remove(c.Path(key)); err != nil {
		c.logger.WithFields(c.fields("forget", key)).WithError(err).Warn("cache remove failed")
	}
}

// Flush 递归删除根目录下的全部内容（含根目录）。根目录不存在时直接返回 nil，
// 删除失败的条目会被聚合进返回的 error，对应的父目录保留。
func (c *Cache) Flush() error {
	if err := removeTree(c.root); err != nil {
		c.logger.WithFields(logrus.Fields{
			"action": "flush",
			"path":   c.root,
		}).WithError(err).Warn("cache flush incomplete")
		return err
	}
	return nil
}

// live 读取并返回未过期的 envelope。
func (c *Cache) live(key string) (envelope, bool) {
	filePath := c.Path(key)
	data, err := c.store.read(filePath)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.WithFields(c.fields("read", key)).WithError(err).Debug("cache read failed")
		}
		return envelope{}, false
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		c.logger.WithFields(c.fields("read", key)).WithError(err).Debug("cache entry corrupt")
		return envelope{}, false
	}
	if env.expired(c.now().Unix()) {
		return envelope{}, false
	}
	return env, true
}

func (c *Cache) fields(action, key string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"key":    c.resolver.Normalize(key),
		"path":   c.Path(key),
	}
}

// fill 以 singleflight 合并同一进程内对同一 key 的并发填充，producer 只执行一次。
// producer 出错时不写入缓存；写入失败被吞掉，值仍返回给调用方。
func fill[T any](c *Cache, key string, ttl time.Duration, producer func() (T, error)) (T, error) {
	flightKey := fmt.Sprintf("%s|%s|%d", c.Path(key), reflect.TypeOf((*T)(nil)).Elem(), ttl)
	v, err, _ := c.flights.Do(flightKey, func() (any, error) {
		value, err := producer()
		if err != nil {
			return nil, err
		}
		c.PutFor(key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}

// GetAs 读取缓存并解码为 T；未命中、过期或类型不匹配时返回 (zero, false)。
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	env, ok := c.live(key)
	if !ok {
		return zero, false
	}
	value, err := decodeValueAs[T](env.Value)
	if err != nil {
		c.logger.WithFields(c.fields("get", key)).WithError(err).Debug("cache value type mismatch")
		return zero, false
	}
	return value, true
}

// PullAs 是 Pull 的类型化版本。
func PullAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	if !c.Has(key) {
		return zero, false
	}
	value, ok := GetAs[T](c, key)
	if !ok {
		return zero, false
	}
	c.Forget(key)
	return value, true
}

// RememberAs 在命中时返回缓存值，否则调用 producer 并以 ttl 写入。
// producer 返回错误时不写入缓存并原样返回错误。
func RememberAs[T any](c *Cache, key string, ttl time.Duration, producer func() (T, error)) (T, error) {
	if value, ok := GetAs[T](c, key); ok {
		return value, nil
	}
	return fill(c, key, ttl, producer)
}
