package exports

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeader means a workbook has no row naming the Initial and Holiday columns.
	ErrNoHeader = errors.New("workbook has no Initial/Holiday header row")
	// ErrNameExhausted means every generated export name was already taken.
	ErrNameExhausted = errors.New("no free export name")
)

// ExportError reports the stage at which an export failed. Nothing is
// published when it is returned.
type ExportError struct {
	Stage string
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
