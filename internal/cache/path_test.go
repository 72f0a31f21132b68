package cache

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePathLayout(t *testing.T) {
	path := ResolvePath("user", "app:", "/var/cache")
	hash := NewKeyPathResolver("/var/cache", "app:").Digest("user")

	assert.Len(t, hash, 40)
	assert.Equal(t, strings.ToLower(hash), hash)
	assert.Equal(t, filepath.Join("/var/cache", hash[0:2], hash[2:4], hash+".cache"), path)
}

func TestResolvePathKnownDigest(t *testing.T) {
	// echo -n "abc" | sha1sum
	path := ResolvePath("c", "ab", "root")
	assert.Equal(t, filepath.Join("root", "a9", "99", "a9993e364706816aba3e25717850c26c9cd0d89d.cache"), path)
}

func TestResolvePathPrefixIdempotent(t *testing.T) {
	assert.Equal(t, ResolvePath("app:x", "app:", "root"), ResolvePath("x", "app:", "root"))
	assert.NotEqual(t, ResolvePath("x", "app:", "root"), ResolvePath("x", "other:", "root"))
}

func TestResolverDirMatchesResolve(t *testing.T) {
	r := NewKeyPathResolver("root/", "p")
	assert.Equal(t, r.Dir("key"), filepath.Dir(r.Resolve("key")))
	assert.Equal(t, "pkey", r.Normalize("key"))
	assert.Equal(t, "pkey", r.Normalize("pkey"))
}
