package holidays

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultStoreTimeout bounds each store call when WithTimeout is not given.
const DefaultStoreTimeout = 10 * time.Second

// Registry is the holiday list held by a Store. Every read goes to the store,
// so registries in different processes sharing one store agree; duplicate and
// missing records are decided by the store.
type Registry struct {
	store   Store
	now     func() time.Time
	timeout time.Duration
}

// Option customizes a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	seed    SeedFunc
	now     func() time.Time
	timeout time.Duration
}

// WithSeed replaces DefaultSeed.
func WithSeed(seed SeedFunc) Option {
	return func(o *registryOptions) {
		if seed != nil {
			o.seed = seed
		}
	}
}

// WithClock overrides the time source used for DD/MM dates and seeding.
func WithClock(now func() time.Time) Option {
	return func(o *registryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(o *registryOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewRegistry seeds store if it was never initialized.
func NewRegistry(ctx context.Context, store Store, opts ...Option) (*Registry, error) {
	o := registryOptions{seed: DefaultSeed, now: time.Now, timeout: DefaultStoreTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{store: store, now: o.now, timeout: o.timeout}

	loadCtx, cancel := r.storeContext(ctx)
	_, err := store.Load(loadCtx)
	cancel()
	if errors.Is(err, ErrUninitialized) {
		items, err := o.seed(o.now())
		if err != nil {
			return nil, fmt.Errorf("seed holidays: %w", err)
		}
		initCtx, cancel := r.storeContext(ctx)
		defer cancel()
		if err := store.Init(initCtx, items); err != nil {
			return nil, fmt.Errorf("initialize holiday store: %w", err)
		}
		log.Printf("holidays: seeded registry with %d holidays", len(items))
	} else if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	return r, nil
}

// List returns all holidays in insertion order.
func (r *Registry) List(ctx context.Context) ([]Holiday, error) {
	return r.load(ctx)
}

// Snapshot returns an immutable view from a single store read.
func (r *Registry) Snapshot(ctx context.Context) (Snapshot, error) {
	items, err := r.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return newSnapshot(items), nil
}

// Add appends a holiday. Empty names and unparsable dates are
// ErrInvalidInput; an existing (name, date) pair is ErrDuplicate.
func (r *Registry) Add(ctx context.Context, name, date string) (Holiday, error) {
	h, err := normalize(name, date, r.now())
	if err != nil {
		return Holiday{}, err
	}

	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	if err := r.store.Insert(ctx, h); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Holiday{}, ErrDuplicate
		}
		return Holiday{}, fmt.Errorf("insert holiday: %w", err)
	}
	return h, nil
}

// Delete removes exactly one holiday matching name and date.
func (r *Registry) Delete(ctx context.Context, name, date string) (Holiday, error) {
	h, err := normalize(name, date, r.now())
	if err != nil {
		return Holiday{}, err
	}

	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	if err := r.store.Delete(ctx, h); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Holiday{}, ErrNotFound
		}
		return Holiday{}, fmt.Errorf("delete holiday: %w", err)
	}
	return h, nil
}

func (r *Registry) load(ctx context.Context) ([]Holiday, error) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	items, err := r.store.Load(ctx)
	if errors.Is(err, ErrUninitialized) {
		// Store wiped after start; nothing to report until it is written again.
		return []Holiday{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	if items == nil {
		items = []Holiday{}
	}
	return items, nil
}

func (r *Registry) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Snapshot is a point-in-time copy of the registry.
type Snapshot struct {
	holidays []Holiday
	dates    map[string]struct{}
}

func newSnapshot(items []Holiday) Snapshot {
	s := Snapshot{
		holidays: append([]Holiday(nil), items...),
		dates:    make(map[string]struct{}, len(items)),
	}
	for _, h := range items {
		s.dates[h.Date] = struct{}{}
	}
	return s
}

// Holidays returns the holidays in insertion order.
func (s Snapshot) Holidays() []Holiday {
	return append([]Holiday(nil), s.holidays...)
}

// IsHoliday reports whether day's calendar date is a holiday.
func (s Snapshot) IsHoliday(day time.Time) bool {
	_, ok := s.dates[FormatDate(day)]
	return ok
}

// Len is the number of holidays in the snapshot.
func (s Snapshot) Len() int {
	return len(s.holidays)
}
