package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"holiday-backend/internal/shared/storage/object"
	"holiday-backend/internal/shared/util"
)

const tmpDirName = ".tmp"

// Store implements object.Store on the local filesystem. Each kind lives in
// its own directory under baseDir; the object's timestamp is its mtime.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) path(kind object.Kind, name string) (string, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, kind.Dir(), name), nil
}

// Put writes r to a temp file and renames it into place.
func (s *Store) Put(ctx context.Context, kind object.Kind, name string, r io.Reader, createdAt time.Time) (object.Info, error) {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return object.Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Info{}, err
	}

	size, err := util.WriteFileAtomic(fullPath, filepath.Join(s.baseDir, tmpDirName), r, createdAt)
	if err != nil {
		return object.Info{}, err
	}

	return object.Info{
		Kind:        kind,
		Name:        name,
		SizeBytes:   size,
		ContentType: object.ContentTypeFor(name),
		CreatedAt:   createdAt,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, kind object.Kind, name string) (io.ReadCloser, object.Info, error) {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return nil, object.Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, object.Info{}, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, object.Info{}, mapErr(err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, object.Info{}, fmt.Errorf("stat: %w", err)
	}
	return f, toInfo(kind, fi), nil
}

// Stat returns the object's metadata.
func (s *Store) Stat(ctx context.Context, kind object.Kind, name string) (object.Info, error) {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return object.Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Info{}, err
	}

	fi, err := os.Stat(fullPath)
	if err != nil {
		return object.Info{}, mapErr(err)
	}
	if !fi.Mode().IsRegular() {
		return object.Info{}, object.ErrNotFound
	}
	return toInfo(kind, fi), nil
}

// Delete unlinks the object.
func (s *Store) Delete(ctx context.Context, kind object.Kind, name string) error {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(os.Remove(fullPath))
}

// List returns every object of the kind in directory order.
func (s *Store) List(ctx context.Context, kind object.Kind) ([]object.Info, error) {
	if !kind.Valid() {
		return nil, object.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.baseDir, kind.Dir()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []object.Info{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	out := make([]object.Info, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		out = append(out, toInfo(kind, fi))
	}
	return out, nil
}

func toInfo(kind object.Kind, fi fs.FileInfo) object.Info {
	return object.Info{
		Kind:        kind,
		Name:        fi.Name(),
		SizeBytes:   fi.Size(),
		ContentType: object.ContentTypeFor(fi.Name()),
		CreatedAt:   fi.ModTime().UTC(),
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return object.ErrNotFound
	}
	return err
}

var _ object.Store = (*Store)(nil)
