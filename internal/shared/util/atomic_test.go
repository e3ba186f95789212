package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFileAtomicPublishesContentAndMtime(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "exports", "a.xlsx")
	mod := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	n, err := WriteFileAtomic(target, filepath.Join(dir, ".tmp"), strings.NewReader("payload"), mod)
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if n != int64(len("payload")) {
		t.Fatalf("unexpected size %d", n)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected content %q", got)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(mod) {
		t.Fatalf("expected mtime %s, got %s", mod, info.ModTime())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestWriteFileAtomicLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "uploads", "a.xlsx")
	tmpDir := filepath.Join(dir, ".tmp")

	_, err := WriteFileAtomic(target, tmpDir, io.MultiReader(strings.NewReader("part"), failingReader{}), time.Time{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no published file, stat err = %v", err)
	}
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp files cleaned up, found %d", len(entries))
	}
}
