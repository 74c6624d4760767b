package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps blobs as plain files under root. Files are served back by the
// portal's /files/ handler, so the returned URL is baseURL plus the key.
type Store struct {
	root    string
	baseURL string
}

// New returns a filesystem-backed blob store rooted at root, creating it if needed.
func New(root, baseURL string) (*Store, error) {
	if root == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory blobs are written to.
func (s *Store) Root() string { return s.root }

// sanitizeKey rejects traversal and absolute keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

// Put streams r to a temp file next to the target and renames it into place.
// Existing keys are refused.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, int64, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", 0, err
	}
	dataPath := filepath.Join(s.root, filepath.FromSlash(k))
	if _, err := os.Stat(dataPath); err == nil {
		return "", 0, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return "", 0, err
	}
	return s.baseURL + "/" + k, size, nil
}
