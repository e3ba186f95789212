package artifacts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"holiday-backend/internal/shared/storage/object"
	"holiday-backend/internal/shared/telemetry"
)

const defaultTimeout = 10 * time.Second

// Descriptor is the metadata of a stored artifact.
type Descriptor = object.Info

// Item is one member of a batch write.
type Item struct {
	Name string
	Data []byte
}

// Service stores uploads and exports with create-only semantics on top of
// an object.Store. Operations on the same (kind, name) are serialized;
// operations on different keys run independently.
type Service struct {
	store   object.Store
	timeout time.Duration
	now     func() time.Time
	locks   *keyLocks

	clockMu sync.Mutex
	last    time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wraps store.
func NewService(store object.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		timeout: defaultTimeout,
		now:     time.Now,
		locks:   newKeyLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores data under (kind, name). It fails with ErrExists when the name
// is already taken and never replaces an existing artifact.
func (s *Service) Put(ctx context.Context, kind object.Kind, name string, data []byte) (Descriptor, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return Descriptor{}, err
	}

	unlock := s.locks.lock(lockKey(kind, name))
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.ensureAbsent(ctx, kind, name); err != nil {
		return Descriptor{}, err
	}
	return s.write(ctx, kind, name, data)
}

// PutAll stores every item or none of them. All names are checked before the
// first write; if a later write fails, members already written are removed.
func (s *Service) PutAll(ctx context.Context, kind object.Kind, items []Item) ([]Descriptor, error) {
	if len(items) == 0 {
		return []Descriptor{}, nil
	}

	seen := make(map[string]struct{}, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if err := object.CheckKey(kind, item.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[item.Name]; dup {
			return nil, &ExistsError{Kind: kind, Name: item.Name}
		}
		seen[item.Name] = struct{}{}
		keys = append(keys, lockKey(kind, item.Name))
	}
	sort.Strings(keys)

	unlock := s.locks.lockAll(keys)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	for _, item := range items {
		if err := s.ensureAbsent(ctx, kind, item.Name); err != nil {
			return nil, err
		}
	}

	out := make([]Descriptor, 0, len(items))
	for _, item := range items {
		desc, err := s.write(ctx, kind, item.Name, item.Data)
		if err != nil {
			s.rollback(kind, out)
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// Get returns the full contents of an artifact.
func (s *Service) Get(ctx context.Context, kind object.Kind, name string) ([]byte, Descriptor, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return nil, Descriptor{}, err
	}

	unlock := s.locks.lock(lockKey(kind, name))
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rc, info, err := s.store.Open(ctx, kind, name)
	if err != nil {
		return nil, Descriptor{}, s.wrap("open", kind, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, Descriptor{}, &StorageError{Op: "read", Kind: kind, Name: name, Err: err}
	}
	info.SizeBytes = int64(len(data))
	return data, info, nil
}

// Open streams an artifact. The timeout covers reading until Close.
func (s *Service) Open(ctx context.Context, kind object.Kind, name string) (io.ReadCloser, Descriptor, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return nil, Descriptor{}, err
	}

	unlock := s.locks.lock(lockKey(kind, name))
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	rc, info, err := s.store.Open(ctx, kind, name)
	if err != nil {
		cancel()
		return nil, Descriptor{}, s.wrap("open", kind, name, err)
	}
	return &cancelOnClose{ReadCloser: rc, cancel: cancel}, info, nil
}

// PresignURL returns a direct download URL when the backend supports it.
// ok is false when it does not; the caller then serves the bytes itself.
func (s *Service) PresignURL(ctx context.Context, kind object.Kind, name, disposition string, ttl time.Duration) (url string, ok bool, err error) {
	presigner, supported := s.store.(object.Presigner)
	if !supported || ttl <= 0 {
		return "", false, nil
	}
	if err := object.CheckKey(kind, name); err != nil {
		return "", false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.Stat(ctx, kind, name); err != nil {
		return "", false, s.wrap("stat", kind, name, err)
	}
	url, err = presigner.PresignGet(ctx, kind, name, disposition, ttl)
	if err != nil {
		return "", false, &StorageError{Op: "presign", Kind: kind, Name: name, Err: err}
	}
	return url, true, nil
}

// Delete removes an artifact. Deleting a missing artifact is ErrNotFound.
func (s *Service) Delete(ctx context.Context, kind object.Kind, name string) error {
	if err := object.CheckKey(kind, name); err != nil {
		return err
	}

	unlock := s.locks.lock(lockKey(kind, name))
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, kind, name); err != nil {
		return s.wrap("delete", kind, name, err)
	}
	return nil
}

// List returns every artifact of kind, most recent first. Equal timestamps
// are ordered by name, descending.
func (s *Service) List(ctx context.Context, kind object.Kind) ([]Descriptor, error) {
	if !kind.Valid() {
		return nil, ErrInvalidName
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	infos, err := s.store.List(ctx, kind)
	if err != nil {
		return nil, &StorageError{Op: "list", Kind: kind, Err: err}
	}
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

func (s *Service) ensureAbsent(ctx context.Context, kind object.Kind, name string) error {
	_, err := s.store.Stat(ctx, kind, name)
	switch {
	case err == nil:
		return &ExistsError{Kind: kind, Name: name}
	case errors.Is(err, object.ErrNotFound):
		return nil
	default:
		return &StorageError{Op: "stat", Kind: kind, Name: name, Err: err}
	}
}

func (s *Service) write(ctx context.Context, kind object.Kind, name string, data []byte) (Descriptor, error) {
	info, err := s.store.Put(ctx, kind, name, bytes.NewReader(data), s.stamp())
	if err != nil {
		return Descriptor{}, &StorageError{Op: "put", Kind: kind, Name: name, Err: err}
	}
	return info, nil
}

// rollback runs on a fresh context: the batch context may be what failed.
func (s *Service) rollback(kind object.Kind, written []Descriptor) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, desc := range written {
		if err := s.store.Delete(ctx, kind, desc.Name); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Error("artifacts.rollback_failed", map[string]any{
				"kind":     string(kind),
				"filename": desc.Name,
				"error":    err,
			})
		}
	}
}

func (s *Service) wrap(op string, kind object.Kind, name string, err error) error {
	if errors.Is(err, object.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Kind: kind, Name: name, Err: err}
}

// stamp returns a creation time strictly after every earlier stamp.
func (s *Service) stamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func lockKey(kind object.Kind, name string) string {
	return string(kind) + "|" + name
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
