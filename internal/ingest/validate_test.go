package ingest

import (
	"errors"
	"strings"
	"testing"
)

var (
	xlsxBytes = append([]byte("PK\x03\x04"), []byte("rest of zip")...)
	xlsBytes  = append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0x00, 0x01)
)

func TestValidateAcceptsExcelFiles(t *testing.T) {
	t.Parallel()
	files, err := Validate([]File{
		{Name: "report.xlsx", Data: xlsxBytes},
		{Name: "Legacy.XLS", Data: xlsBytes},
		{Name: `C:\Users\me\Team.XLSX`, Data: xlsxBytes},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []string{"report.xlsx", "Legacy.XLS", "Team.XLSX"}
	for i, name := range want {
		if files[i].Name != name {
			t.Fatalf("file %d: expected %q, got %q", i, name, files[i].Name)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    []File
		wantFile string
	}{
		{name: "empty batch", files: nil, wantFile: ""},
		{name: "text file", files: []File{{Name: "notes.txt", Data: []byte("hi")}}, wantFile: "notes.txt"},
		{name: "no extension", files: []File{{Name: "report", Data: xlsxBytes}}, wantFile: "report"},
		{name: "empty workbook", files: []File{{Name: "a.xlsx"}}, wantFile: "a.xlsx"},
		{name: "renamed text", files: []File{{Name: "a.xlsx", Data: []byte("plain text")}}, wantFile: "a.xlsx"},
		{name: "xls with zip body", files: []File{{Name: "a.xls", Data: xlsxBytes}}, wantFile: "a.xls"},
		{name: "hidden name", files: []File{{Name: ".xlsx", Data: xlsxBytes}}, wantFile: ".xlsx"},
		{
			name: "second file bad",
			files: []File{
				{Name: "good.xlsx", Data: xlsxBytes},
				{Name: "notes.txt", Data: []byte("hi")},
			},
			wantFile: "notes.txt",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(tt.files)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.File != tt.wantFile {
				t.Fatalf("expected file %q, got %q", tt.wantFile, verr.File)
			}
		})
	}
}

func TestValidationMessageNamesFile(t *testing.T) {
	t.Parallel()
	_, err := Validate([]File{{Name: "notes.txt", Data: []byte("hi")}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message(), "notes.txt") {
		t.Fatalf("expected message to name the file, got %q", verr.Message())
	}

	_, err = Validate(nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}
