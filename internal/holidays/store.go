package holidays

import "context"

// Store persists the holiday list and is the only copy of it: the registry
// reads through on every call. Implementations must be safe for concurrent
// use and honor ctx cancellation where they block.
type Store interface {
	// Load returns all holidays in insertion order, or ErrUninitialized if
	// the store has never been initialized.
	Load(ctx context.Context) ([]Holiday, error)
	// Init replaces the contents with seed and marks the store initialized.
	Init(ctx context.Context, seed []Holiday) error
	// Insert appends h or returns ErrDuplicate.
	Insert(ctx context.Context, h Holiday) error
	// Delete removes exactly one matching record or returns ErrNotFound.
	Delete(ctx context.Context, h Holiday) error
}
