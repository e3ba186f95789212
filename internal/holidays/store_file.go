package holidays

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"holiday-backend/internal/shared/util"
)

// FileStore keeps holidays in a JSON array of {"name", "date"} objects and
// rewrites the whole file on every mutation through a temp file and rename.
// Older files holding DD/MM dates are read with the current year. Every call
// reads the file, so stores sharing a path see each other's writes.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Load(ctx context.Context) ([]Holiday, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileStore) Init(ctx context.Context, seed []Holiday) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(append([]Holiday(nil), seed...))
}

func (s *FileStore) Insert(ctx context.Context, h Holiday) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.current()
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing == h {
			return ErrDuplicate
		}
	}
	return s.commit(append(items, h))
}

func (s *FileStore) Delete(ctx context.Context, h Holiday) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.current()
	if err != nil {
		return err
	}
	for i, existing := range items {
		if existing == h {
			return s.commit(append(items[:i:i], items[i+1:]...))
		}
	}
	return ErrNotFound
}

// current reads the file, treating a missing one as empty.
func (s *FileStore) current() ([]Holiday, error) {
	items, err := s.read()
	if errors.Is(err, ErrUninitialized) {
		return []Holiday{}, nil
	}
	return items, err
}

// commit replaces the file with items.
func (s *FileStore) commit(items []Holiday) error {
	if items == nil {
		items = []Holiday{}
	}
	payload, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("encode holidays: %w", err)
	}
	if _, err := util.WriteFileAtomic(s.path, filepath.Dir(s.path), bytes.NewReader(payload), time.Time{}); err != nil {
		return fmt.Errorf("write holidays file: %w", err)
	}
	return nil
}

func (s *FileStore) read() ([]Holiday, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrUninitialized
		}
		return nil, fmt.Errorf("read holidays file: %w", err)
	}
	var records []Holiday
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode holidays file: %w", err)
	}
	now := s.now()
	items := make([]Holiday, 0, len(records))
	for i, rec := range records {
		h, err := normalize(rec.Name, rec.Date, now)
		if err != nil {
			return nil, fmt.Errorf("holidays file entry %d (%q): %w", i, rec.Name, err)
		}
		items = append(items, h)
	}
	return items, nil
}
