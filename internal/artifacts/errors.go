package artifacts

import (
	"errors"
	"fmt"

	"holiday-backend/internal/shared/storage/object"
)

var (
	ErrNotFound    = object.ErrNotFound
	ErrInvalidName = object.ErrInvalidKey
	ErrExists      = errors.New("artifact already exists")
)

// ExistsError names the artifact that blocked a create. It matches ErrExists.
type ExistsError struct {
	Kind object.Kind
	Name string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExists, e.Name)
}

func (e *ExistsError) Is(target error) bool {
	return target == ErrExists
}

// StorageError reports a failed backend operation. The artifact named by
// Kind and Name is left as it was before the call.
type StorageError struct {
	Op   string
	Kind object.Kind
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Kind, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
