package object

import (
	"errors"
	"testing"
)

func TestCheckKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kind  Kind
		key   string
		valid bool
	}{
		{name: "upload", kind: KindUpload, key: "holidays2024.xlsx", valid: true},
		{name: "export", kind: KindExport, key: "holidays_20240101_000000_ab.xlsx", valid: true},
		{name: "unknown kind", kind: Kind("report"), key: "a.xlsx"},
		{name: "empty", kind: KindUpload, key: ""},
		{name: "hidden", kind: KindUpload, key: ".tmp"},
		{name: "slash", kind: KindUpload, key: "a/b.xlsx"},
		{name: "backslash", kind: KindUpload, key: `a\b.xlsx`},
		{name: "traversal", kind: KindUpload, key: "a..b.xlsx"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckKey(tt.kind, tt.key)
			if tt.valid && err != nil {
				t.Fatalf("CheckKey(%q, %q) = %v, want nil", tt.kind, tt.key, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("CheckKey(%q, %q) = %v, want ErrInvalidKey", tt.kind, tt.key, err)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()
	if got := ContentTypeFor("A.XLSX"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected xlsx type %q", got)
	}
	if got := ContentTypeFor("a.xls"); got != "application/vnd.ms-excel" {
		t.Fatalf("unexpected xls type %q", got)
	}
	if got := ContentTypeFor("a.bin"); got != "application/octet-stream" {
		t.Fatalf("unexpected fallback type %q", got)
	}
	if got := KindExport.Dir(); got != "exports" {
		t.Fatalf("unexpected dir %q", got)
	}
}
