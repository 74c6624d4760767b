package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_Put(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	s, err := New(root, "http://localhost:8080/files/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	url, size, err := s.Put(ctx, "uploads/alice/a.pdf", strings.NewReader("hello"), "application/pdf")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "http://localhost:8080/files/uploads/alice/a.pdf" {
		t.Errorf("unexpected url %s", url)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}
	data, err := os.ReadFile(filepath.Join(root, "uploads", "alice", "a.pdf"))
	if err != nil || string(data) != "hello" {
		t.Errorf("expected file contents, got %q, %v", data, err)
	}

	if _, _, err := s.Put(ctx, "uploads/alice/a.pdf", strings.NewReader("again"), ""); err == nil {
		t.Error("expected duplicate key to be refused")
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	s, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape", "/abs/path", "a/../../b"} {
		if _, _, err := s.Put(context.Background(), key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestStore_ReaderErrorLeavesNothingBehind(t *testing.T) {
	root := t.TempDir()
	s, _ := New(root, "")
	if _, _, err := s.Put(context.Background(), "k.txt", failingReader{}, ""); err == nil {
		t.Fatal("expected reader error")
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("expected no files, found %d", len(entries))
	}
}
