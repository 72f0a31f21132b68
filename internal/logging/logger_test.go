package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/diskcache/diskcache/internal/config"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"}, nil)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 下目录权限不生效")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "diskcache.log"),
	}
	logger, err := InitLogger(cfg, nil)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diskcache.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg, nil)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestInitLoggerUsesConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.WithField("action", "probe").Info("hello")
	if !strings.Contains(buf.String(), `"action":"probe"`) {
		t.Fatalf("应输出 JSON 到 console writer: %s", buf.String())
	}
	logrus.SetOutput(os.Stdout)
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}, nil); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestCacheFields(t *testing.T) {
	fields := CacheFields("get", "app:user", "/tmp/ab/cd/x.cache", true)
	if fields["action"] != "get" || fields["key"] != "app:user" || fields["cache_hit"] != true {
		t.Fatalf("字段不完整: %v", fields)
	}
}
