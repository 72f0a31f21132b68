package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// fileExt 为缓存文件后缀。
const fileExt = ".cache"

// KeyPathResolver 将逻辑 key 映射到 <root>/<hh>/<hh>/<sha1>.cache。
type KeyPathResolver struct {
	root   string
	prefix string
}

// NewKeyPathResolver 以 root 与 prefix 构造解析器，root 会被 Clean。
func NewKeyPathResolver(root, prefix string) KeyPathResolver {
	return KeyPathResolver{root: filepath.Clean(root), prefix: prefix}
}

// Normalize 为 key 补齐前缀；已带前缀的 key 原样返回。
func (r KeyPathResolver) Normalize(key string) string {
	if strings.HasPrefix(key, r.prefix) {
		return key
	}
	return r.prefix + key
}

// Digest 返回规范化 key 的 40 位小写十六进制 SHA-1。
func (r KeyPathResolver) Digest(key string) string {
	sum := sha1.Sum([]byte(r.Normalize(key)))
	return hex.EncodeToString(sum[:])
}

// Dir 返回条目所在的两级分片目录。
func (r KeyPathResolver) Dir(key string) string {
	hash := r.Digest(key)
	return filepath.Join(r.root, hash[0:2], hash[2:4])
}

// Resolve 返回条目的完整文件路径。
func (r KeyPathResolver) Resolve(key string) string {
	hash := r.Digest(key)
	return filepath.Join(r.root, hash[0:2], hash[2:4], hash+fileExt)
}

// ResolvePath 是 KeyPathResolver 的函数式入口。
func ResolvePath(key, prefix, root string) string {
	return NewKeyPathResolver(root, prefix).Resolve(key)
}
