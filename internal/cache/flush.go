package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// removeTree 深度优先删除 dir 下的全部条目，最后删除 dir 本身。
//
// 文件与符号链接直接 unlink（不跟随链接）；子目录先递归，只有当其子项全部
// 删除成功后才会 rmdir。单个条目失败不会中断遍历，所有失败被聚合返回，
// 失败路径上的祖先目录会保留在磁盘上。dir 不存在时视为成功。
func removeTree(dir string) error {
	info, err := os.Lstat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return removeEntry(dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	var errs error
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			errs = multierr.Append(errs, removeTree(child))
			continue
		}
		errs = multierr.Append(errs, removeEntry(child))
	}
	if errs != nil {
		return errs
	}
	return removeEntry(dir)
}

func removeEntry(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
