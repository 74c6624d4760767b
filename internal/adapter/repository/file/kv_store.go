package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

const (
	fileSuffix = ".json"
	filePerm   = 0644
)

// KVStore keeps one file per key inside a directory. Writes go to a temporary
// file that is synced and renamed over the target, so a crash never leaves a
// half-written collection behind.
type KVStore struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// NewKVStore creates the directory if needed.
func NewKVStore(dir string, logger *slog.Logger) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &KVStore{
		dir:    dir,
		logger: logger.With("component", "file_kv_store"),
	}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return payload, nil
}

func (s *KVStore) Put(ctx context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		s.logger.Warn("failed to set file permissions", "key", key, "error", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	s.logger.Debug("wrote key", "key", key, "bytes", len(payload))
	return nil
}

// pathFor escapes the key so that "profile:alice" or "../x" map to a single file inside dir.
func (s *KVStore) pathFor(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileSuffix)
}
