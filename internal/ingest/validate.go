// Package ingest checks uploaded files before they reach storage.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"holiday-backend/internal/shared/util"
)

var (
	xlsxSignature = []byte("PK\x03\x04")
	xlsSignature  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ErrNoFiles is wrapped by the ValidationError returned for an empty batch.
var ErrNoFiles = errors.New("no files selected")

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

// ValidationError names the first file that failed and why.
type ValidationError struct {
	File   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the uploader.
func (e *ValidationError) Message() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("Invalid file format for %s. Please upload Excel files only.", e.File)
}

// Validate accepts a batch only if every file is an Excel workbook with a
// storable name. It returns the files with sanitized names and does not
// modify its input.
func Validate(files []File) ([]File, error) {
	if len(files) == 0 {
		return nil, &ValidationError{Reason: "No selected files", Err: ErrNoFiles}
	}

	out := make([]File, 0, len(files))
	for _, f := range files {
		name, err := util.SanitizeFileName(path.Base(strings.ReplaceAll(f.Name, `\`, "/")))
		if err != nil {
			return nil, &ValidationError{File: f.Name, Reason: "invalid file name", Err: err}
		}
		if reason := checkContent(name, f.Data); reason != "" {
			return nil, &ValidationError{File: name, Reason: reason}
		}
		out = append(out, File{Name: name, Data: f.Data})
	}
	return out, nil
}

func checkContent(name string, data []byte) string {
	var signature []byte
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		signature = xlsxSignature
	case ".xls":
		signature = xlsSignature
	default:
		return "unsupported file extension"
	}
	if len(data) == 0 {
		return "file is empty"
	}
	if !bytes.HasPrefix(data, signature) {
		return "content is not an Excel workbook"
	}
	return ""
}
