package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// WriteFileAtomic streams r into a temp file under tmpDir and renames it onto
// path, so readers see either the old file or the complete new one. A
// non-zero modTime is applied before the rename. tmpDir must be on the same
// filesystem as path.
func WriteFileAtomic(path, tmpDir string, r io.Reader, modTime time.Time) (int64, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir temp: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(tmpDir, "write-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(tmpPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("set mtime: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("publish file: %w", err)
	}

	success = true
	return written, nil
}
