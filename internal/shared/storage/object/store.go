package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Kind partitions the artifact namespace. Names are unique within a kind.
type Kind string

const (
	KindUpload Kind = "upload"
	KindExport Kind = "export"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindUpload || k == KindExport
}

// Dir is the directory (or key segment) holding objects of this kind.
func (k Kind) Dir() string {
	return string(k) + "s"
}

var (
	// ErrNotFound indicates the object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey indicates a kind or name that cannot address an object.
	ErrInvalidKey = errors.New("invalid object key")
)

// Info describes a stored object without its bytes.
type Info struct {
	Kind        Kind
	Name        string
	SizeBytes   int64
	ContentType string
	CreatedAt   time.Time
}

// Store defines the contract for saving and retrieving artifact bytes.
// Put must publish atomically: a concurrent Open, Stat or List sees either
// nothing or the complete object. Put replaces an existing object; callers
// that need create-only semantics check with Stat under their own lock.
type Store interface {
	Put(ctx context.Context, kind Kind, name string, r io.Reader, createdAt time.Time) (Info, error)
	Open(ctx context.Context, kind Kind, name string) (io.ReadCloser, Info, error)
	Stat(ctx context.Context, kind Kind, name string) (Info, error)
	Delete(ctx context.Context, kind Kind, name string) error
	List(ctx context.Context, kind Kind) ([]Info, error)
}

// Presigner is implemented by stores that can hand out time-limited direct
// download URLs. disposition is a full Content-Disposition value.
type Presigner interface {
	PresignGet(ctx context.Context, kind Kind, name, disposition string, ttl time.Duration) (string, error)
}

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".json": "application/json",
}

// ContentTypeFor maps a file name to its MIME type by extension.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// CheckKey rejects kinds and names that could escape the kind partition.
func CheckKey(kind Kind, name string) error {
	if !kind.Valid() {
		return ErrInvalidKey
	}
	if name == "" || name == "." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrInvalidKey
	}
	return nil
}
