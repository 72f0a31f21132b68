package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// settingsFileNotFoundError 表示 <dir>/<name>.<ext> 不存在。
type settingsFileNotFoundError struct {
	path string
}

func (e *settingsFileNotFoundError) Error() string {
	return fmt.Sprintf("file [%s] not found", e.path)
}

// Settings 是目录级的配置仓库：<dir>/<name>.<ext>（toml/yaml/json 等 viper 支持的格式）为默认文件，
// 点分 key 的首段若恰好是同目录下的另一个文件名，则切换到该文件读取剩余路径，
// 例如 "db.primary.host" → db.toml 中的 primary.host。
//
// viper 会将 key 统一为小写，Save 写回的文件同样是小写 key。
type Settings struct {
	dir  string
	name string

	mu    sync.Mutex
	files map[string]*viper.Viper
	dirty map[string]bool
}

// OpenSettings 打开 dir 下名为 name（不含扩展名）的配置文件，文件不存在时报错。
func OpenSettings(dir, name string) (*Settings, error) {
	if name == "" {
		name = "app"
	}
	s := &Settings{
		dir:   dir,
		name:  name,
		files: make(map[string]*viper.Viper),
		dirty: make(map[string]bool),
	}
	if _, err := s.load(name); err != nil {
		return nil, err
	}
	return s, nil
}

// Name 返回默认文件名。
func (s *Settings) Name() string { return s.name }

func (s *Settings) String() string {
	return fmt.Sprintf("path: %s, file: %s, fileName: %s", s.dir, s.name, s.files[s.name].ConfigFileUsed())
}

// Get 返回 key 对应的值，不存在时返回 nil。
func (s *Settings) Get(key string) any {
	return s.GetDefault(key, nil)
}

// GetDefault 返回 key 对应的值，不存在或目标文件无法解析时返回 def。
func (s *Settings) GetDefault(key string, def any) any {
	value, ok, err := s.Lookup(key)
	if err != nil || !ok {
		return def
	}
	return value
}

// Lookup 返回 key 对应的值及其是否存在；首段指向的同目录文件解析失败时返回该错误。
func (s *Settings) Lookup(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, rest, err := s.route(key)
	if err != nil {
		return nil, false, err
	}
	if rest == "" {
		return v.AllSettings(), true, nil
	}
	if !v.IsSet(rest) {
		return nil, false, nil
	}
	return v.Get(rest), true, nil
}

// Set 在运行时写入 key，中间层级不存在时自动创建。需调用 Save 持久化。
func (s *Settings) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value)
}

// SetMany 批量写入，返回所有失败 key 的合并错误。
func (s *Settings) SetMany(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs error
	for key, value := range values {
		errs = multierr.Append(errs, s.setLocked(key, value))
	}
	return errs
}

func (s *Settings) setLocked(key string, value any) error {
	v, rest, err := s.route(key)
	if err != nil {
		return err
	}
	if rest == "" {
		return nil
	}
	v.Set(rest, value)
	s.dirty[s.fileOf(v)] = true
	return nil
}

// Delete 删除若干 key（支持点分路径），不存在的 key 被忽略。需调用 Save 持久化。
func (s *Settings) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs error
	for _, key := range keys {
		errs = multierr.Append(errs, s.deleteLocked(key))
	}
	return errs
}

// Purge 删除若干 key 并立即写回磁盘。
func (s *Settings) Purge(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.Delete(keys...); err != nil {
		return err
	}
	return s.Save()
}

// Save 将所有被修改过的文件写回磁盘。
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	for name := range s.dirty {
		if err := s.files[name].WriteConfig(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("save %s: %w", name, err))
			continue
		}
		delete(s.dirty, name)
	}
	return errs
}

// All 返回默认文件的全部配置。
func (s *Settings) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[s.name].AllSettings()
}

// route 根据 key 首段决定目标文件，返回该文件的 viper 实例与剩余 key。
// 仅当首段没有对应文件时回退到默认文件；文件存在但解析失败时返回错误。
func (s *Settings) route(key string) (*viper.Viper, string, error) {
	first, rest, found := strings.Cut(key, ".")
	if found && first != "" {
		v, err := s.load(first)
		if err == nil {
			return v, rest, nil
		}
		var notFound *settingsFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", err
		}
	}
	return s.files[s.name], key, nil
}

func (s *Settings) deleteLocked(key string) error {
	v, rest, err := s.route(key)
	if err != nil {
		return err
	}
	if rest == "" {
		return nil
	}
	all := v.AllSettings()
	if !deletePath(all, strings.Split(strings.ToLower(rest), ".")) {
		return nil
	}

	name := s.fileOf(v)
	fresh := viper.New()
	fresh.SetConfigFile(v.ConfigFileUsed())
	if err := fresh.MergeConfigMap(all); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.files[name] = fresh
	s.dirty[name] = true
	return nil
}

// load 读取并缓存 <dir>/<name>.<ext>。
func (s *Settings) load(name string) (*viper.Viper, error) {
	if v, ok := s.files[name]; ok {
		return v, nil
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, &settingsFileNotFoundError{path: filepath.Join(s.dir, name)}
	}

	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(s.dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, &settingsFileNotFoundError{path: filepath.Join(s.dir, name)}
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	// 固定文件路径，保证 WriteConfig 写回原文件。
	v.SetConfigFile(v.ConfigFileUsed())
	s.files[name] = v
	return v, nil
}

func (s *Settings) fileOf(v *viper.Viper) string {
	for name, candidate := range s.files {
		if candidate == v {
			return name
		}
	}
	return s.name
}

// deletePath 在嵌套 map 中删除 segments 指向的节点，返回是否删除成功。
func deletePath(m map[string]any, segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	if len(segments) == 1 {
		if _, ok := m[segments[0]]; !ok {
			return false
		}
		delete(m, segments[0])
		return true
	}
	child, ok := m[segments[0]].(map[string]any)
	if !ok {
		return false
	}
	return deletePath(child, segments[1:])
}
