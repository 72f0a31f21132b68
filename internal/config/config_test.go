package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/diskcache/diskcache/internal/cache"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Cache.TTL.DurationValue() != 90*time.Minute {
		t.Fatalf("TTL should be parsed from duration string, got %s", cfg.Cache.TTL.DurationValue())
	}
	if !filepath.IsAbs(cfg.Cache.Path) {
		t.Fatalf("cache path should be absolute, got %s", cfg.Cache.Path)
	}
	if cfg.Cache.Prefix != "app:" {
		t.Fatalf("prefix mismatch: %s", cfg.Cache.Prefix)
	}
	if cfg.Global.LogMaxSize != 100 || cfg.Global.LogMaxBackups != 10 || !cfg.Global.LogCompress {
		t.Fatalf("log rotation defaults not applied: %+v", cfg.Global)
	}
}

func TestValidateRejectsMissingPrefix(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("config without prefix should fail")
	}
}

func TestValidateRejectsBadTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTL = Duration(-5 * time.Second)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("negative TTL other than -1 should fail")
	}

	cfg.Cache.TTL = Duration(cache.Forever)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("forever TTL should be accepted: %v", err)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Global.LogLevel = "loud"
	err := cfg.Validate()
	fieldErr, ok := err.(FieldError)
	if !ok {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Field != "Global.LogLevel" {
		t.Fatalf("unexpected field: %s", fieldErr.Field)
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := validConfig()
	opts := cfg.Cache.Options(nil)
	if opts.Path != "./data" || opts.Prefix != "app:" || opts.TTL != time.Hour {
		t.Fatalf("options mismatch: %+v", opts)
	}
	if _, err := cache.New(opts); err != nil {
		t.Fatalf("options should build a cache: %v", err)
	}
}

func TestTTLLabel(t *testing.T) {
	cfg := validConfig()
	if cfg.Cache.TTLLabel() != "1h0m0s" {
		t.Fatalf("unexpected label %s", cfg.Cache.TTLLabel())
	}
	cfg.Cache.TTL = Duration(cache.Forever)
	if cfg.Cache.TTLLabel() != "forever" {
		t.Fatalf("unexpected label %s", cfg.Cache.TTLLabel())
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel: "info",
		},
		Cache: CacheConfig{
			Path:   "./data",
			TTL:    Duration(time.Hour),
			Prefix: "app:",
		},
	}
}
