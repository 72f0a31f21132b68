package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// writeCacheSection 生成仅包含 [Cache] 段的配置；ttl 为空时省略 TTL 字段。
func writeCacheSection(t *testing.T, prefix, ttl string) string {
	t.Helper()
	content := fmt.Sprintf("[Cache]\nPrefix = %q\n", prefix)
	if ttl != "" {
		content += "TTL = " + ttl + "\n"
	}
	return writeTempConfig(t, content)
}
