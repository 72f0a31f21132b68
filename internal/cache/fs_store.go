package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// fileStore 负责单个缓存文件的读、写、删，写入通过 entryLock 串行化同一路径，
// 并以临时文件 + rename 保证原子替换。
type fileStore struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func newFileStore() *fileStore {
	return &fileStore{locks: make(map[string]*entryLock)}
}

// exists 仅探测文件是否存在，不校验内容。
func (s *fileStore) exists(filePath string) bool {
	_, err := os.Lstat(filePath)
	return err == nil
}

// read 返回文件全部内容；不存在或为目录时返回 ErrNotFound。
func (s *fileStore) read(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// write 创建分片目录 dir 后原子写入 data；临时文件与目标位于同一目录，rename 不跨设备。
func (s *fileStore) write(dir, filePath string, data []byte) error {
	unlock := s.lockEntry(filePath)
	defer unlock()

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create shard directory: %w", err)
	}

	tempName := filepath.Join(dir, ".tmp-"+uuid.NewString())
	tempFile, err := os.OpenFile(tempName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = tempFile.Write(data)
	if err == nil {
		err = tempFile.Sync()
	}
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// remove 删除文件，文件不存在时不报错。
func (s *fileStore) remove(filePath string) error {
	unlock := s.lockEntry(filePath)
	defer unlock()

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *fileStore) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
